package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetProgramInput defines the input schema for the get_program tool.
type GetProgramInput struct {
	Program      string `json:"program" jsonschema:"required,Program ID or slug or name"`
	IncludeSetup bool   `json:"include_setup,omitempty" jsonschema:"Include the machining setup JSON in the response"`
}

// GetProgramResult is the response from the get_program tool.
type GetProgramResult struct {
	ProgramSummary
	Model string          `json:"model,omitempty"`
	Text  string          `json:"text"`
	Setup json.RawMessage `json:"setup,omitempty"`
}

// NewGetProgramHandler creates the get_program tool handler.
func NewGetProgramHandler(deps *Dependencies) mcp.ToolHandlerFor[GetProgramInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetProgramInput) (
		*mcp.CallToolResult, any, error,
	) {
		// Input validation
		if input.Program == "" {
			return ErrorResult("Program reference cannot be empty", "Provide an ID, slug, or name"), nil, nil
		}

		if deps.Programs == nil {
			return ErrorResult("Stored programs are not available", "The server was started without a database"), nil, nil
		}

		rec, err := deps.Programs.Resolve(ctx, input.Program)
		if err != nil {
			deps.Logger.Error("program lookup failed", "program", input.Program, "error", err)
			return ErrorResult("Program not found: "+input.Program, "Use list_programs to see what is stored"), nil, nil
		}

		result := GetProgramResult{
			ProgramSummary: summarize(rec),
			Model:          rec.Model,
			Text:           rec.Text,
		}
		if input.IncludeSetup && rec.SetupJSON != "" {
			result.Setup = json.RawMessage(rec.SetupJSON)
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("get_program completed", "program", input.Program)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
