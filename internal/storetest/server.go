// Package storetest provides an in-memory record store speaking the subset of the
// PostgREST and auth-provider HTTP APIs used by the console, for tests.
package storetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Row is a stored record
type Row map[string]any

// uniqueColumns lists the column each table enforces uniqueness on
var uniqueColumns = map[string]string{
	"users":        "username",
	"super_admins": "admin_super_user",
}

// serialTables get integer IDs instead of UUIDs
var serialTables = map[string]bool{
	"super_admins": true,
}

type account struct {
	id       uuid.UUID
	email    string
	password string
}

// Server is an in-memory record store served over HTTP
type Server struct {
	*httptest.Server
	ServiceKey string

	mu       sync.Mutex
	tables   map[string][]Row
	accounts map[uuid.UUID]*account
	serial   int64
	failWhen []func(r *http.Request) bool
	requests []string
}

// NewServer starts a store accepting serviceKey and closes it when the test ends
func NewServer(t testing.TB, serviceKey string) *Server {
	t.Helper()
	s := &Server{
		ServiceKey: serviceKey,
		tables:     make(map[string][]Row),
		accounts:   make(map[uuid.UUID]*account),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Seed inserts a row as-is
func (s *Server) Seed(table string, row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], normalizeRow(row))
}

// Row returns a copy of the row of table whose "id" equals id, or nil
func (s *Server) Row(table string, id any) Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := fmt.Sprint(id)
	for _, row := range s.tables[table] {
		if fmt.Sprint(row["id"]) == want {
			return normalizeRow(row)
		}
	}
	return nil
}

// Rows returns a copy of every row of table
func (s *Server) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Row, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		rows = append(rows, normalizeRow(row))
	}
	return rows
}

// StringList reads a list column of a row as strings
func (s *Server) StringList(table string, id any, column string) []string {
	row := s.Row(table, id)
	if row == nil {
		return nil
	}
	items, _ := row[column].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// AddAccount registers an auth-provider account and returns its ID
func (s *Server) AddAccount(email, password string) uuid.UUID {
	id := uuid.New()
	s.AddAccountWithID(id, email, password)
	return id
}

// AddAccountWithID registers an auth-provider account with a fixed ID
func (s *Server) AddAccountWithID(id uuid.UUID, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &account{id: id, email: email, password: password}
}

// HasAccount reports whether an auth-provider account with id exists
func (s *Server) HasAccount(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[id]
	return ok
}

// FailWhen makes every request matching fn answer 500
func (s *Server) FailWhen(fn func(r *http.Request) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWhen = append(s.failWhen, fn)
}

// Requests returns the "METHOD path?query" log of handled requests
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts logged requests starting with prefix
func (s *Server) CountRequests(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != s.ServiceKey || r.Header.Get("Authorization") != "Bearer "+s.ServiceKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid api key"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		entry += "?" + r.URL.RawQuery
	}
	s.requests = append(s.requests, entry)

	for _, fn := range s.failWhen {
		if fn(r) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "injected failure"})
			return
		}
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/rest/v1/"):
		s.serveTable(w, r, strings.TrimPrefix(r.URL.Path, "/rest/v1/"))
	case r.URL.Path == "/auth/v1/token":
		s.serveToken(w, r)
	case r.URL.Path == "/auth/v1/admin/users":
		s.serveCreateAccount(w, r)
	case strings.HasPrefix(r.URL.Path, "/auth/v1/admin/users/"):
		s.serveAccount(w, r, strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func (s *Server) serveTable(w http.ResponseWriter, r *http.Request, table string) {
	query := r.URL.Query()
	filters := map[string]string{}
	for key, values := range query {
		switch key {
		case "select", "order", "limit":
			continue
		}
		if len(values) > 0 && strings.HasPrefix(values[0], "eq.") {
			filters[key] = strings.TrimPrefix(values[0], "eq.")
		}
	}
	representation := r.Header.Get("Prefer") == "return=representation"

	switch r.Method {
	case http.MethodGet:
		rows := s.match(table, filters)
		if order := query.Get("order"); order != "" {
			column := strings.TrimSuffix(order, ".asc")
			sort.SliceStable(rows, func(i, j int) bool {
				return fmt.Sprint(rows[i][column]) < fmt.Sprint(rows[j][column])
			})
		}
		if limit := query.Get("limit"); limit != "" {
			var n int
			fmt.Sscanf(limit, "%d", &n)
			if n < len(rows) {
				rows = rows[:n]
			}
		}
		writeJSON(w, http.StatusOK, rows)

	case http.MethodPost:
		var row Row
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		if column, ok := uniqueColumns[table]; ok {
			for _, existing := range s.tables[table] {
				if fmt.Sprint(existing[column]) == fmt.Sprint(row[column]) {
					writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key value violates unique constraint"})
					return
				}
			}
		}
		if _, ok := row["id"]; !ok {
			if serialTables[table] {
				s.serial++
				row["id"] = s.serial
			} else {
				row["id"] = uuid.NewString()
			}
		}
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}
		row = normalizeRow(row)
		s.tables[table] = append(s.tables[table], row)
		if representation {
			writeJSON(w, http.StatusCreated, []Row{row})
			return
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodPatch:
		var patch Row
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		patch = normalizeRow(patch)
		updated := make([]Row, 0)
		for _, row := range s.tables[table] {
			if rowMatches(row, filters) {
				for k, v := range patch {
					row[k] = v
				}
				updated = append(updated, normalizeRow(row))
			}
		}
		if representation {
			writeJSON(w, http.StatusOK, updated)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		kept := s.tables[table][:0]
		for _, row := range s.tables[table] {
			if !rowMatches(row, filters) {
				kept = append(kept, row)
			}
		}
		s.tables[table] = kept
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (s *Server) match(table string, filters map[string]string) []Row {
	rows := make([]Row, 0)
	for _, row := range s.tables[table] {
		if rowMatches(row, filters) {
			rows = append(rows, normalizeRow(row))
		}
	}
	return rows
}

func rowMatches(row Row, filters map[string]string) bool {
	for column, value := range filters {
		if fmt.Sprint(row[column]) != value {
			return false
		}
	}
	return true
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) serveToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	for _, acc := range s.accounts {
		if acc.email == creds.Email && acc.password == creds.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "access-" + acc.id.String(),
				"token_type":   "bearer",
				"user":         map[string]any{"id": acc.id.String(), "email": acc.email},
			})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"})
}

func (s *Server) serveCreateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "email and password are required"})
		return
	}
	for _, acc := range s.accounts {
		if acc.email == creds.Email {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "A user with this email address has already been registered"})
			return
		}
	}
	acc := &account{id: uuid.New(), email: creds.Email, password: creds.Password}
	s.accounts[acc.id] = acc
	writeJSON(w, http.StatusOK, map[string]any{"id": acc.id.String(), "email": acc.email})
}

func (s *Server) serveAccount(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "User not found"})
		return
	}
	acc, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "User not found"})
		return
	}
	switch r.Method {
	case http.MethodPut:
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
			return
		}
		if creds.Email != "" {
			acc.email = creds.Email
		}
		if creds.Password != "" {
			acc.password = creds.Password
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": acc.id.String(), "email": acc.email})
	case http.MethodDelete:
		delete(s.accounts, id)
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

// normalizeRow deep-copies a row through JSON so stored values have decoded JSON types
func normalizeRow(row Row) Row {
	raw, err := json.Marshal(row)
	if err != nil {
		panic(err)
	}
	var out Row
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
