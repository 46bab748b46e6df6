package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, map[string]string{
		"message": "TradeGuardAI API",
		"status":  "running",
		"version": a.version,
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, dbState, code := "healthy", "ok", http.StatusOK
	if err := a.db.PingContext(ctx); err != nil {
		slog.Error("health check: database unavailable", "error", err)
		status, dbState, code = "degraded", "unavailable", http.StatusServiceUnavailable
	}
	jsonResp(w, code, map[string]string{
		"status":    status,
		"database":  dbState,
		"timestamp": db.FormatTime(time.Now()),
	})
}
