package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mbuchner/millwright/internal/store"
)

// ListProgramsInput defines the input schema for the list_programs tool.
type ListProgramsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Filter matched against name and material and program text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results 1-100, default 20"`
}

// ProgramSummary is one stored program's listing entry.
type ProgramSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	OpCount  int    `json:"op_count"`
	Shape    string `json:"shape"`
	Material string `json:"material,omitempty"`
	Revision int    `json:"revision"`
	Updated  string `json:"updated"`
}

// ListProgramsResult is the response from the list_programs tool.
type ListProgramsResult struct {
	Programs []ProgramSummary `json:"programs"`
	Count    int              `json:"count"`
}

// summarize flattens a stored record into its listing entry.
func summarize(rec *store.ProgramRecord) ProgramSummary {
	id, err := store.RecordIDString(rec.ID)
	if err != nil {
		id = ""
	}
	return ProgramSummary{
		ID:       id,
		Name:     rec.Name,
		Slug:     rec.Slug,
		OpCount:  rec.OpCount,
		Shape:    rec.Shape,
		Material: rec.Material,
		Revision: rec.Revision,
		Updated:  rec.Updated.Format(time.RFC3339),
	}
}

// NewListProgramsHandler creates the list_programs tool handler.
func NewListProgramsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListProgramsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListProgramsInput) (
		*mcp.CallToolResult, any, error,
	) {
		// Set defaults and validate limit
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			return ErrorResult("Limit must be 1-100", "Reduce limit value"), nil, nil
		}

		if deps.Programs == nil {
			return ErrorResult("Stored programs are not available", "The server was started without a database"), nil, nil
		}

		records, err := deps.Programs.Search(ctx, input.Query, limit)
		if err != nil {
			deps.Logger.Error("list failed", "error", err)
			return ErrorResult("Listing failed", "Database may be unavailable"), nil, nil
		}

		result := ListProgramsResult{
			Programs: make([]ProgramSummary, 0, len(records)),
			Count:    len(records),
		}
		for i := range records {
			result.Programs = append(result.Programs, summarize(&records[i]))
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("list_programs completed", "query", input.Query, "results", len(records))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
