package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/store"
)

// MachiningStatsInput defines the input schema for the machining_stats tool.
type MachiningStatsInput struct{}

// MachiningStatsResult is the response from the machining_stats tool.
type MachiningStatsResult struct {
	Store   *store.Stats      `json:"store,omitempty"`
	Runtime *metrics.Snapshot `json:"runtime,omitempty"`
}

// NewMachiningStatsHandler creates the machining_stats tool handler.
// Store counts come from the database; runtime numbers are in-memory
// since server start.
func NewMachiningStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[MachiningStatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MachiningStatsInput) (
		*mcp.CallToolResult, any, error,
	) {
		result := MachiningStatsResult{}

		if deps.Programs != nil {
			stats, err := deps.Programs.Stats(ctx)
			if err != nil {
				deps.Logger.Error("store stats failed", "error", err)
				return ErrorResult("Stats query failed", "Database may be unavailable"), nil, nil
			}
			result.Store = stats
		}

		if deps.Collector != nil {
			snap := deps.Collector.Snapshot()
			result.Runtime = &snap
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("machining_stats completed")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
