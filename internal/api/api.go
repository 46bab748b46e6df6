// Package api serves the TradeGuard dashboard backend over HTTP: read
// endpoints for events, SKUs, ports and news, derived analytics, the
// simulated forecast, bearer-token auth and the live event stream.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ApexYash11/TradeguardAI/internal/auth"
	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/forecast"
	"github.com/ApexYash11/TradeguardAI/internal/metrics"
)

const (
	maxLimit = 1000
	maxDays  = 3650
)

// Options carries the optional collaborators. Nil fields disable the
// corresponding route or side effect.
type Options struct {
	Version   string
	Simulator *forecast.Simulator
	History   *db.HistoryRecorder
	Metrics   *metrics.Metrics
	Stream    http.Handler
	MCP       http.Handler
	// AuthLimiter throttles login and register per client IP.
	AuthLimiter *RateLimiter
}

type API struct {
	db   *db.DB
	auth *auth.Auth

	version     string
	simulator   *forecast.Simulator
	history     *db.HistoryRecorder
	metrics     *metrics.Metrics
	stream      http.Handler
	mcp         http.Handler
	authLimiter *RateLimiter
}

func New(database *db.DB, a *auth.Auth, opts Options) *API {
	if opts.Simulator == nil {
		opts.Simulator = forecast.NewSimulator(nil)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &API{
		db:          database,
		auth:        a,
		version:     opts.Version,
		simulator:   opts.Simulator,
		history:     opts.History,
		metrics:     opts.Metrics,
		stream:      opts.Stream,
		mcp:         opts.MCP,
		authLimiter: opts.AuthLimiter,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", a.limitAuth(a.handleRegister))
	mux.HandleFunc("POST /api/auth/login", a.limitAuth(a.handleLogin))
	mux.HandleFunc("GET /api/auth/me", a.handleMe)
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)

	// Events
	mux.HandleFunc("GET /api/events", a.handleListEvents)
	mux.HandleFunc("GET /api/events/{id}", a.handleGetEvent)

	// SKUs
	mux.HandleFunc("GET /api/sku", a.handleListSKUs)
	mux.HandleFunc("GET /api/sku/{id}", a.handleGetSKU)

	// Ports
	mux.HandleFunc("GET /api/ports", a.handleListPorts)
	mux.HandleFunc("GET /api/ports/{id}", a.handleGetPort)
	mux.HandleFunc("GET /api/ports/{id}/events", a.handlePortEvents)

	// News
	mux.HandleFunc("GET /api/news", a.handleListNews)
	mux.HandleFunc("GET /api/news/sentiment", a.handleSentiment)

	// Analytics
	mux.HandleFunc("GET /api/analytics/gtri", a.handleGTRI)
	mux.HandleFunc("GET /api/analytics/trends", a.handleTrends)
	mux.HandleFunc("GET /api/analytics/ports", a.handlePortAnalytics)

	// Forecast
	mux.HandleFunc("GET /api/forecast/comparison", a.handleForecastComparison)
	mux.HandleFunc("GET /api/forecast/{sku_id}", a.handleForecast)
	mux.HandleFunc("GET /api/forecast/{sku_id}/history", a.handleForecastHistory)

	if a.stream != nil {
		mux.Handle("GET /ws/events", a.stream)
	}
	if a.mcp != nil {
		mux.Handle("/mcp", NoWriteDeadline(a.mcp))
	}
}

// Handler returns a fresh mux with every route, wrapped in the middleware
// stack.
func (a *API) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return SecurityHeaders(CORS(allowedOrigins, RequestID(Instrument(a.metrics, mux))))
}

func (a *API) limitAuth(next http.HandlerFunc) http.HandlerFunc {
	if a.authLimiter == nil {
		return next
	}
	return RateLimitMiddleware(a.authLimiter, next)
}

// --- Helpers ---

func jsonResp(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// storeError maps a store failure to a response: ErrNotFound becomes a 404
// naming entity, anything else is logged and hidden behind a 500.
func storeError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	if errors.Is(err, db.ErrNotFound) {
		jsonError(w, entity+" not found", http.StatusNotFound)
		return
	}
	slog.Error("store query failed", "route", r.Pattern, "error", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

// queryInt reads a positive integer query parameter capped at upper. An
// absent parameter yields def.
func queryInt(r *http.Request, name string, def, upper int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return min(n, upper), nil
}

func parseLimit(r *http.Request, def int) (int, error) {
	return queryInt(r, "limit", def, maxLimit)
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}
