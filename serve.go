package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ApexYash11/TradeguardAI/internal/api"
	"github.com/ApexYash11/TradeguardAI/internal/auth"
	"github.com/ApexYash11/TradeguardAI/internal/broadcast"
	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/forecast"
	"github.com/ApexYash11/TradeguardAI/internal/mcp"
	"github.com/ApexYash11/TradeguardAI/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the event broadcaster",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	secret, err := signingSecret(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	history := db.NewHistoryRecorder(database)
	defer history.Close()

	m := metrics.New()
	sim := forecast.NewSimulator(nil)
	hub := broadcast.NewHub(database, broadcast.Options{
		Interval:       cfg.Broadcast.Interval(),
		WriteTimeout:   cfg.Broadcast.WriteTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        m,
	})
	mcpServer := mcp.NewServer(mcp.Deps{
		DB:        database,
		Simulator: sim,
		History:   history,
		Version:   version,
	})

	a := api.New(database, auth.New(secret, cfg.Auth.TokenExpiryMin), api.Options{
		Version:     version,
		Simulator:   sim,
		History:     history,
		Metrics:     m,
		Stream:      hub,
		MCP:         mcp.NewHTTPHandler(mcpServer),
		AuthLimiter: api.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler(cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		WriteTimeout:      cfg.Server.WriteTimeout(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("tradeguard listening",
			"version", version,
			"addr", cfg.Server.Addr,
			"database", cfg.Database.Path,
			"broadcast_interval", cfg.Broadcast.Interval(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		slog.Info("http server stopped")
		return nil
	})

	return g.Wait()
}

// signingSecret returns the configured secret or, when none is set, a random
// per-process one. Tokens signed with a generated secret do not survive a
// restart.
func signingSecret(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating signing secret: %w", err)
	}
	slog.Warn("no signing secret configured; using a random per-process secret",
		"hint", "set auth.jwt_secret or TRADEGUARD_SECRET_KEY")
	return hex.EncodeToString(buf), nil
}
