package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newUserRouter(t *testing.T, svc *mockUserService, session *models.Session) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Use(withSession(session))
	NewUserHandler(svc, zaptest.NewLogger(t)).RegisterRoutes(r)
	return r
}

func TestUserHandler(t *testing.T) {
	id := uuid.New()
	user := &models.User{ID: id, Username: "u@example.com", PasswordHash: "hash", Role: models.RoleRegular, Active: true, Channels: []uuid.UUID{}}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		err            error
		expectedStatus int
	}{
		{name: "list", method: http.MethodGet, path: "/users", expectedStatus: http.StatusOK},
		{name: "get", method: http.MethodGet, path: "/users/" + id.String(), expectedStatus: http.StatusOK},
		{name: "get invalid id", method: http.MethodGet, path: "/users/abc", expectedStatus: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, path: "/users", body: `{"username":"u@example.com","password":"password123"}`, expectedStatus: http.StatusCreated},
		{name: "create duplicate", method: http.MethodPost, path: "/users", body: `{"username":"u@example.com","password":"password123"}`, err: fmt.Errorf("username %w", models.ErrAlreadyExists), expectedStatus: http.StatusBadRequest},
		{name: "create quota reached", method: http.MethodPost, path: "/users", body: `{"username":"u@example.com","password":"password123"}`, err: fmt.Errorf("%w: user limit reached (1)", models.ErrInvalidInput), expectedStatus: http.StatusBadRequest},
		{name: "patch", method: http.MethodPatch, path: "/users/" + id.String(), body: `{"active":false}`, expectedStatus: http.StatusOK},
		{name: "put not found", method: http.MethodPut, path: "/users/" + id.String(), body: `{}`, err: fmt.Errorf("user %w", models.ErrNotFound), expectedStatus: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: "/users/" + id.String(), expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{users: []models.User{*user}, user: user, err: tt.err}
			r := newUserRouter(t, svc, nil)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "hash")
		})
	}
}

func TestUserHandler_Actor(t *testing.T) {
	tests := []struct {
		name          string
		session       *models.Session
		expectedActor string
	}{
		{name: "super admin", session: &models.Session{Username: "root", Role: models.RoleSuperAdmin, SuperAdminID: 3}, expectedActor: "root"},
		{name: "admin user", session: &models.Session{Username: "a@example.com", Role: models.RoleAdmin}, expectedActor: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{user: &models.User{ID: uuid.New()}}
			r := newUserRouter(t, svc, tt.session)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"u@example.com","password":"password123","channels":[]}`))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, []string{tt.expectedActor}, svc.actors)
			assert.Equal(t, "u@example.com", svc.createReq.Username)
		})
	}
}

func TestUserHandler_ListBody(t *testing.T) {
	id := uuid.New()
	channelID := uuid.New()
	svc := &mockUserService{users: []models.User{{ID: id, Username: "u@example.com", Role: models.RoleAdmin, Active: true, Channels: []uuid.UUID{channelID}}}}
	r := newUserRouter(t, svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, id.String(), got[0]["id"])
	assert.Equal(t, []any{channelID.String()}, got[0]["channels"])
	assert.NotContains(t, got[0], "password_hash")
}
