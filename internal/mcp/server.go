// Package mcp registers the TradeGuard read model as tools on an MCP server.
// The server is mounted over streamable HTTP at /mcp.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ApexYash11/TradeguardAI/internal/analytics"
	"github.com/ApexYash11/TradeguardAI/internal/db"
	"github.com/ApexYash11/TradeguardAI/internal/forecast"
	"github.com/hazyhaar/pkg/kit"
)

const maxLimit = 1000

// Deps are the collaborators the tools read from. History may be nil.
type Deps struct {
	DB        *db.DB
	Simulator *forecast.Simulator
	History   *db.HistoryRecorder
	Version   string
}

// NewServer creates an MCPServer with every TradeGuard tool registered.
func NewServer(d Deps) *server.MCPServer {
	version := d.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		"tradeguard",
		version,
		server.WithToolCapabilities(true),
	)

	registerGetGTRI(srv, d.DB)
	registerListEvents(srv, d.DB)
	registerGetEvent(srv, d.DB)
	registerListSKUs(srv, d.DB)
	registerSimulateForecast(srv, d)
	registerNewsSentiment(srv, d.DB)

	return srv
}

// NewHTTPHandler serves srv over the streamable HTTP transport.
func NewHTTPHandler(srv *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(srv)
}

// --- get_gtri ---

func registerGetGTRI(srv *server.MCPServer, database *db.DB) {
	schema, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	})
	tool := mcp.NewToolWithRawSchema("get_gtri", "Global Trade Risk Index over the most recent 100 events", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, _ any) (any, error) {
		samples, err := database.RecentSeverities(analytics.WindowSize)
		if err != nil {
			return nil, err
		}
		in := make([]analytics.Sample, len(samples))
		for i, s := range samples {
			in[i] = analytics.Sample(s)
		}
		return analytics.ComputeGTRI(in, time.Now()), nil
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: struct{}{}}, nil
	})
}

// --- list_events ---

func registerListEvents(srv *server.MCPServer, database *db.DB) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max events, newest first (default 10)"},
		},
	})
	tool := mcp.NewToolWithRawSchema("list_events", "List trade disruption events, newest first", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		r := request.(*limitReq)
		return database.ListEvents(r.Limit)
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		limit, err := limitArg(req.GetArguments(), 10)
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &limitReq{Limit: limit}}, nil
	})
}

type limitReq struct {
	Limit int `json:"limit"`
}

// --- get_event ---

func registerGetEvent(srv *server.MCPServer, database *db.DB) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"event_id": map[string]any{"type": "integer", "description": "Event ID"},
		},
		"required": []string{"event_id"},
	})
	tool := mcp.NewToolWithRawSchema("get_event", "Retrieve a single event by ID", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		r := request.(*idReq)
		ev, err := database.GetEvent(r.ID)
		if err != nil {
			return nil, notFound(err, "Event")
		}
		return ev, nil
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		id, err := idArg(req.GetArguments(), "event_id")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &idReq{ID: id}}, nil
	})
}

type idReq struct {
	ID int64 `json:"id"`
}

// --- list_skus ---

func registerListSKUs(srv *server.MCPServer, database *db.DB) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max SKUs by risk level (default all)"},
		},
	})
	tool := mcp.NewToolWithRawSchema("list_skus", "List SKUs ordered by risk level, highest first", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		return database.ListSKUs(request.(*limitReq).Limit)
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		limit, err := limitArg(req.GetArguments(), 0)
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &limitReq{Limit: limit}}, nil
	})
}

// --- simulate_forecast ---

func registerSimulateForecast(srv *server.MCPServer, d Deps) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sku_id": map[string]any{"type": "integer", "description": "SKU ID"},
		},
		"required": []string{"sku_id"},
	})
	tool := mcp.NewToolWithRawSchema("simulate_forecast",
		"Simulated 30-day risk series for a SKU. The values are a random placeholder, not a prediction", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, request any) (any, error) {
		sku, err := d.DB.GetSKU(request.(*idReq).ID)
		if err != nil {
			return nil, notFound(err, "SKU")
		}
		f := d.Simulator.ForSKU(*sku)
		if d.History != nil {
			d.History.Record(f.Records(time.Now()))
		}
		return f, nil
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		id, err := idArg(req.GetArguments(), "sku_id")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &idReq{ID: id}}, nil
	})
}

// --- news_sentiment ---

func registerNewsSentiment(srv *server.MCPServer, database *db.DB) {
	schema, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	})
	tool := mcp.NewToolWithRawSchema("news_sentiment", "Aggregate sentiment across news articles", schema)

	kit.RegisterMCPTool(srv, tool, func(ctx context.Context, _ any) (any, error) {
		values, err := database.ArticleSentiments()
		if err != nil {
			return nil, err
		}
		return analytics.Sentiment(values), nil
	}, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: struct{}{}}, nil
	})
}

// --- helpers ---

func notFound(err error, entity string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s not found", entity)
	}
	return err
}

func intArg(args map[string]any, key string) (int64, bool, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
}

func limitArg(args map[string]any, def int) (int, error) {
	n, ok, err := intArg(args, "limit")
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	if n < 1 {
		return 0, fmt.Errorf("limit must be at least 1")
	}
	return int(min(n, maxLimit)), nil
}

func idArg(args map[string]any, key string) (int64, error) {
	n, ok, err := intArg(args, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
