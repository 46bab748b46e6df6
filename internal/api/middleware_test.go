package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ApexYash11/TradeguardAI/internal/broadcast"
	"github.com/ApexYash11/TradeguardAI/internal/metrics"
)

func TestCORS(t *testing.T) {
	h := newHarness(t)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, h.BaseURL+"/api/auth/login", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := preflight("http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	resp = preflight("https://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	h := newHarness(t)

	resp, err := h.Do("GET", "/health", nil, "")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)

	req, err := http.NewRequest("GET", h.BaseURL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "trace-abc")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-abc", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestInstrumentRecordsRoutePattern(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/events/1", "/api/events/2", "/api/events/9999"} {
		resp, err := h.Do("GET", path, nil, "")
		require.NoError(t, err)
		resp.Body.Close()
	}

	ok := h.Metrics.HTTPRequests.WithLabelValues("GET", "GET /api/events/{id}", "200")
	missing := h.Metrics.HTTPRequests.WithLabelValues("GET", "GET /api/events/{id}", "404")
	assert.Equal(t, 2.0, testutil.ToFloat64(ok))
	assert.Equal(t, 1.0, testutil.ToFloat64(missing))

	resp, err := h.Do("GET", "/metrics", nil, "")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `route="GET /api/events/{id}"`)
}

func TestStreamUpgradesThroughMiddleware(t *testing.T) {
	var hub *broadcast.Hub
	h := newHarness(t, func(o *Options) {
		hub = broadcast.NewHub(nil, broadcast.Options{AllowedOrigins: testOrigins, Metrics: o.Metrics})
		o.Stream = hub
	})

	url := "ws" + strings.TrimPrefix(h.BaseURL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:3000"}})
	require.NoError(t, err)
	defer conn.Close()

	var hello broadcast.ConnectionMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connection", hello.Type)
	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.WSClients))
}

func TestNoWriteDeadlineOutlivesServerTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = io.WriteString(w, "late")
	})
	mux := http.NewServeMux()
	mux.Handle("GET /bounded", slow)
	mux.Handle("GET /stream", NoWriteDeadline(slow))

	// Instrument wraps the writer, so the deadline is cleared through Unwrap.
	srv := httptest.NewUnstartedServer(Instrument(metrics.New(), mux))
	srv.Config.WriteTimeout = 100 * time.Millisecond
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "late", string(body))

	resp, err = http.Get(srv.URL + "/bounded")
	if err == nil {
		_, err = io.ReadAll(resp.Body)
		resp.Body.Close()
	}
	assert.Error(t, err, "the server write timeout still applies elsewhere")
}
