// Package store talks to the REST record store (PostgREST tables under /rest/v1 and the
// auth service under /auth/v1) with the service-role key.
//
// Every response is normalised into a Result:
//   - status >= 400 or a transport failure is an *Error wrapping ErrUpstream
//   - an empty or non-JSON success body is ResultEmpty ("the store accepted it")
//   - a JSON array is ResultArray, possibly empty
//   - a JSON object is ResultObject
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUpstream is wrapped by every failure reported by the record store client
var ErrUpstream = errors.New("record store failure")

const (
	restPrefix = "/rest/v1/"
	// maxErrorBody bounds how much of a failing response is kept in an Error
	maxErrorBody = 2048
)

// Error describes a failed record store call
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap exposes ErrUpstream and the transport error, if any
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// StatusOf returns the HTTP status of a record store error, or 0 when err carries none
func StatusOf(err error) int {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Status
	}
	return 0
}

// ResultKind tells which shape a successful response had
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultArray
	ResultObject
)

// Result is a normalised successful response
type Result struct {
	Status int
	Kind   ResultKind
	Body   json.RawMessage
}

// HasRecords reports whether the result carries at least one record
func (r *Result) HasRecords() bool {
	switch r.Kind {
	case ResultObject:
		return true
	case ResultArray:
		var rows []json.RawMessage
		return json.Unmarshal(r.Body, &rows) == nil && len(rows) > 0
	default:
		return false
	}
}

// Decode unmarshals the body into dst; an empty result leaves dst untouched
func (r *Result) Decode(dst any) error {
	if r.Kind == ResultEmpty {
		return nil
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("failed to decode record store response: %w", err)
	}
	return nil
}

// DecodeFirst unmarshals the first record into dst and reports whether there was one
func (r *Result) DecodeFirst(dst any) (bool, error) {
	switch r.Kind {
	case ResultObject:
		return true, r.Decode(dst)
	case ResultArray:
		var rows []json.RawMessage
		if err := json.Unmarshal(r.Body, &rows); err != nil {
			return false, fmt.Errorf("failed to decode record store response: %w", err)
		}
		if len(rows) == 0 {
			return false, nil
		}
		if err := json.Unmarshal(rows[0], dst); err != nil {
			return false, fmt.Errorf("failed to decode record store response: %w", err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// Filter is a single PostgREST query parameter
type Filter struct {
	Key   string
	Value string
}

// Eq matches rows whose column equals value
func Eq(column string, value any) Filter {
	return Filter{Key: column, Value: fmt.Sprintf("eq.%v", value)}
}

// Order sorts rows by column ascending
func Order(column string) Filter {
	return Filter{Key: "order", Value: column + ".asc"}
}

// Select limits the returned columns
func Select(columns ...string) Filter {
	return Filter{Key: "select", Value: strings.Join(columns, ",")}
}

// Limit caps the number of returned rows
func Limit(n int) Filter {
	return Filter{Key: "limit", Value: fmt.Sprintf("%d", n)}
}

// Client is a thin REST client for the record store
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a record store client.
// "baseURL" is the store root (for example http://kong:8000); "serviceKey" is the service role key.
func NewClient(baseURL, serviceKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs one call against the store and normalises the response.
// "path" is relative to the base URL and may carry a query string.
// "body" is JSON-encoded when not nil.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*Result, error) {
	return c.do(ctx, method, path, body, nil)
}

// Select fetches rows of table matching filters
func (c *Client) Select(ctx context.Context, table string, filters ...Filter) (*Result, error) {
	return c.do(ctx, http.MethodGet, tablePath(table, filters), nil, nil)
}

// Insert creates a row and returns the stored representation
func (c *Client) Insert(ctx context.Context, table string, row any) (*Result, error) {
	return c.do(ctx, http.MethodPost, tablePath(table, nil), row, returnRepresentation)
}

// Update patches rows of table matching filters and returns the stored representation
func (c *Client) Update(ctx context.Context, table string, patch any, filters ...Filter) (*Result, error) {
	return c.do(ctx, http.MethodPatch, tablePath(table, filters), patch, returnRepresentation)
}

// Delete removes rows of table matching filters
func (c *Client) Delete(ctx context.Context, table string, filters ...Filter) (*Result, error) {
	return c.do(ctx, http.MethodDelete, tablePath(table, filters), nil, nil)
}

var returnRepresentation = map[string]string{"Prefer": "return=representation"}

func tablePath(table string, filters []Filter) string {
	path := restPrefix + table
	if len(filters) == 0 {
		return path
	}
	query := url.Values{}
	for _, f := range filters {
		query.Add(f.Key, f.Value)
	}
	return path + "?" + query.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (*Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to encode body: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("record store request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	c.logger.Debug("record store request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		storeErr := &Error{Method: method, Path: path, Status: resp.StatusCode, Body: truncate(string(raw), maxErrorBody)}
		c.logger.Error("record store returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", storeErr.Body),
		)
		return nil, storeErr
	}

	return normalize(resp.StatusCode, raw), nil
}

// normalize classifies a successful body
func normalize(status int, raw []byte) *Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return &Result{Status: status, Kind: ResultEmpty}
	}
	switch trimmed[0] {
	case '[':
		return &Result{Status: status, Kind: ResultArray, Body: trimmed}
	case '{':
		return &Result{Status: status, Kind: ResultObject, Body: trimmed}
	default:
		return &Result{Status: status, Kind: ResultEmpty}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
