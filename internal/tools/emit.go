package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/post"
)

// EmitProgramInput defines the input schema for the emit_program tool.
type EmitProgramInput struct {
	Setup map[string]any `json:"setup" jsonschema:"required,Machining setup object with stock and operations"`
}

// NewEmitProgramHandler creates the emit_program tool handler.
// Emission is deterministic: the same setup always produces the same
// program text, with no oracle involved.
func NewEmitProgramHandler(deps *Dependencies) mcp.ToolHandlerFor[EmitProgramInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmitProgramInput) (
		*mcp.CallToolResult, any, error,
	) {
		if len(input.Setup) == 0 {
			return ErrorResult("Setup cannot be empty", "Provide a setup object with stock and operations"), nil, nil
		}

		setup, err := decodeSetupArg(input.Setup)
		if err != nil {
			return ErrorResult("Invalid setup: "+err.Error(), "Fix the setup fields and retry"), nil, nil
		}

		prof := deps.postProfile()
		if errs := prof.CheckOperations(setup.Operations); len(errs) > 0 {
			lines := make([]string, len(errs))
			for i, e := range errs {
				lines[i] = e.Error()
			}
			return ErrorResult("Setup violates machine limits:\n"+strings.Join(lines, "\n"),
				"Bring the offending values inside the profile limits"), nil, nil
		}

		emitStart := time.Now()
		text := post.EmitSetup(setup, prof.PostOptions())
		if deps.Collector != nil {
			deps.Collector.RecordTiming(metrics.OpEmit, time.Since(emitStart))
		}

		deps.Logger.Info("emit_program completed", "operations", len(setup.Operations))
		return TextResult(text), nil, nil
	}
}

// decodeSetupArg round-trips a schemaless tool argument through JSON into
// a validated setup.
func decodeSetupArg(arg map[string]any) (*model.Setup, error) {
	data, err := json.Marshal(arg)
	if err != nil {
		return nil, err
	}
	return model.DecodeSetup(data)
}
