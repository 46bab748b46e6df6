// Package broadcast implements the live event stream: a registry of open
// WebSocket connections and a background loop that periodically pushes one
// randomly drawn stored event to all of them.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/metrics"
)

const (
	DefaultInterval     = 15 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// EventSource draws one stored event. It returns db.ErrNotFound when there
// is nothing to draw.
type EventSource interface {
	RandomEvent() (*db.Event, error)
}

// ConnectionMessage is sent once, right after a client registers.
type ConnectionMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EventMessage is the per-tick payload.
type EventMessage struct {
	Type      string  `json:"type"`
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Severity  float64 `json:"severity"`
	Port      string  `json:"port"`
	Commodity string  `json:"commodity"`
	Timestamp string  `json:"timestamp"`
}

func NewEventMessage(e *db.Event) EventMessage {
	return EventMessage{
		Type:      "event",
		ID:        e.ID,
		Title:     e.Title,
		Summary:   e.Summary,
		Severity:  e.Severity,
		Port:      e.Port,
		Commodity: e.Commodity,
		Timestamp: e.Timestamp,
	}
}

type Options struct {
	Interval       time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	Metrics        *metrics.Metrics
}

// Hub owns the connection registry. Handlers reach it only through its
// methods; the registry is never exposed.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}

	source       EventSource
	interval     time.Duration
	writeTimeout time.Duration
	metrics      *metrics.Metrics
	upgrader     websocket.Upgrader
}

func NewHub(source EventSource, opts Options) *Hub {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	h := &Hub{
		clients:      make(map[*Client]struct{}),
		source:       source,
		interval:     opts.Interval,
		writeTimeout: opts.WriteTimeout,
		metrics:      opts.Metrics,
	}
	h.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      originChecker(opts.AllowedOrigins),
	}
	return h
}

// originChecker accepts requests without an Origin header (non-browser
// clients), any origin when "*" is listed, and otherwise exact matches.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		return set[strings.ToLower(origin)]
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(n))
	}
}

// Unregister removes c and reports whether it was registered.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok && h.metrics != nil {
		h.metrics.WSClients.Set(float64(n))
	}
	return ok
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast sends v to every client registered at call time and returns how
// many sends succeeded. A failed send is logged and counted; the client stays
// registered until its own read loop observes the closure.
func (h *Hub) Broadcast(v any) int {
	sent := 0
	for _, c := range h.snapshot() {
		if err := c.send(v, h.writeTimeout); err != nil {
			slog.Warn("broadcast send failed", "client", c.id, "error", err)
			if h.metrics != nil {
				h.metrics.BroadcastSendErr.Inc()
			}
			continue
		}
		sent++
	}
	return sent
}

// Tick draws one random event and broadcasts it. An empty store is not an
// error. A panic inside the tick is recovered and returned as an error.
func (h *Hub) Tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("broadcast tick panicked: %v", r)
		}
	}()

	ev, err := h.source.RandomEvent()
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("drawing event: %w", err)
	}

	sent := h.Broadcast(NewEventMessage(ev))
	if h.metrics != nil {
		h.metrics.Broadcasts.Inc()
	}
	slog.Debug("broadcast event", "event_id", ev.ID, "clients", sent)
	return nil
}

// Run ticks every interval until ctx is cancelled, then closes every client.
// Tick failures are logged and the loop continues.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	slog.Info("event broadcaster started", "interval", h.interval)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("event broadcaster stopped")
			return nil
		case <-ticker.C:
			if err := h.Tick(); err != nil {
				slog.Error("broadcast tick failed", "error", err)
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshot() {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
}

// ServeHTTP upgrades the request, registers the connection, greets it and
// then holds it open until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	c := newClient(conn)
	h.Register(c)
	slog.Info("stream client connected", "client", c.id, "clients", h.Len())

	defer func() {
		h.Unregister(c)
		c.close(websocket.CloseNormalClosure, "")
		slog.Info("stream client disconnected", "client", c.id, "clients", h.Len())
	}()

	hello := ConnectionMessage{
		Type:      "connection",
		Message:   "Connected to TradeGuardAI event stream",
		Timestamp: db.FormatTime(time.Now()),
	}
	if err := c.send(hello, h.writeTimeout); err != nil {
		slog.Warn("stream greeting failed", "client", c.id, "error", err)
		return
	}

	if err := c.readLoop(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		slog.Debug("stream read ended", "client", c.id, "error", err)
	}
}
