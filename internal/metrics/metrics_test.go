package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposed(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "GET /api/events", "200").Inc()
	m.LoginAttempts.WithLabelValues("invalid").Add(2)
	m.WSClients.Set(3)
	m.Broadcasts.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WSClients))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tradeguard_http_requests_total{method="GET",route="GET /api/events",status="200"} 1`)
	assert.Contains(t, string(body), "tradeguard_ws_clients 3")
	assert.Contains(t, string(body), "tradeguard_ws_broadcasts_total 1")
}

func TestNewIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.Broadcasts.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Broadcasts))
}
