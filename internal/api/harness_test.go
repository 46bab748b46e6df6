package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ApexYash11/TradeguardAI/internal/auth"
	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/metrics"
)

var testOrigins = []string{"http://localhost:3000"}

// testHarness runs the full handler stack against a freshly seeded store.
type testHarness struct {
	BaseURL string
	DB      *db.DB
	Auth    *auth.Auth
	History *db.HistoryRecorder
	Metrics *metrics.Metrics

	client *http.Client
}

func newHarness(t *testing.T, configure ...func(*Options)) *testHarness {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	h := &testHarness{
		DB:      database,
		Auth:    auth.New("test-secret", auth.DefaultExpiryMinutes),
		History: db.NewHistoryRecorder(database),
		Metrics: metrics.New(),
		client:  &http.Client{},
	}
	opts := Options{Version: "test", History: h.History, Metrics: h.Metrics}
	for _, fn := range configure {
		fn(&opts)
	}

	srv := httptest.NewServer(New(database, h.Auth, opts).Handler(testOrigins))
	h.BaseURL = srv.URL
	t.Cleanup(func() {
		srv.Close()
		h.History.Close()
		database.Close()
	})
	return h
}

// Do executes an HTTP request and returns the response.
func (h *testHarness) Do(method, path string, body any, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.client.Do(req)
}

// JSON executes a request and decodes the JSON response into dst.
func (h *testHarness) JSON(t *testing.T, method, path string, body any, token string, dst any) *http.Response {
	t.Helper()
	data, resp := h.RawBody(t, method, path, body, token)
	if dst != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, dst), "status %d, body: %s", resp.StatusCode, truncate(string(data), 500))
	}
	return resp
}

// RawBody executes a request and returns the raw response body. The
// response body is reset so callers can still inspect it.
func (h *testHarness) RawBody(t *testing.T, method, path string, body any, token string) ([]byte, *http.Response) {
	t.Helper()
	resp, err := h.Do(method, path, body, token)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return data, resp
}

// Register creates a user and returns its token and id.
func (h *testHarness) Register(t *testing.T, username, password string) (string, int64) {
	t.Helper()
	var out tokenResponse
	resp := h.JSON(t, "POST", "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}, "", &out)
	RequireStatus(t, resp, http.StatusCreated)
	return out.AccessToken, out.UserID
}

// Login authenticates and returns the token and user id.
func (h *testHarness) Login(t *testing.T, username, password string) (string, int64) {
	t.Helper()
	var out tokenResponse
	resp := h.JSON(t, "POST", "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "", &out)
	RequireStatus(t, resp, http.StatusOK)
	return out.AccessToken, out.UserID
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// RequireStatus asserts the HTTP status code matches expected.
func RequireStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, truncate(string(body), 500))
	}
}
