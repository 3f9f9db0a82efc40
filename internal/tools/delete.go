package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DeleteProgramInput defines the input schema for the delete_program tool.
type DeleteProgramInput struct {
	Programs []string `json:"programs" jsonschema:"required,Program IDs or slugs or names to delete"`
}

// DeleteProgramResult is the response from the delete_program tool.
type DeleteProgramResult struct {
	Deleted int `json:"deleted"`
}

// NewDeleteProgramHandler creates the delete_program tool handler.
// Every reference must resolve before anything is deleted, so a typo in
// one reference aborts the whole call.
func NewDeleteProgramHandler(deps *Dependencies) mcp.ToolHandlerFor[DeleteProgramInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteProgramInput) (
		*mcp.CallToolResult, any, error,
	) {
		// Input validation
		if len(input.Programs) == 0 {
			return ErrorResult("At least one program reference is required", "Provide IDs, slugs, or names"), nil, nil
		}

		if deps.Programs == nil {
			return ErrorResult("Stored programs are not available", "The server was started without a database"), nil, nil
		}

		deleted, err := deps.Programs.Delete(ctx, input.Programs...)
		if err != nil {
			deps.Logger.Error("delete failed", "error", err)
			return ErrorResult("Delete failed: "+err.Error(), "Use list_programs to check the references"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(DeleteProgramResult{Deleted: deleted}, "", "  ")

		deps.Logger.Info("delete_program completed", "deleted", deleted)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
