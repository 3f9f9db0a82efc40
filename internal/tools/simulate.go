package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/toolpath"
)

// SimulateToolpathInput defines the input schema for the simulate_toolpath tool.
// Exactly one of program or setup selects what to simulate.
type SimulateToolpathInput struct {
	Program string         `json:"program,omitempty" jsonschema:"Stored program ID or slug or name"`
	Setup   map[string]any `json:"setup,omitempty" jsonschema:"Inline machining setup object"`
	Samples int            `json:"samples,omitempty" jsonschema:"Samples per curve for length estimates, default 200"`
}

// OpPathResult is one operation's path statistics.
type OpPathResult struct {
	Index    int        `json:"index"`
	Type     string     `json:"type"`
	LengthMM float64    `json:"length_mm"`
	Min      [3]float64 `json:"min"`
	Max      [3]float64 `json:"max"`
	Warnings []string   `json:"warnings,omitempty"`
}

// SimulateToolpathResult is the response from the simulate_toolpath tool.
type SimulateToolpathResult struct {
	Operations []OpPathResult `json:"operations"`
	TotalMM    float64        `json:"total_mm"`
	Min        [3]float64     `json:"min"`
	Max        [3]float64     `json:"max"`
}

// NewSimulateToolpathHandler creates the simulate_toolpath tool handler.
func NewSimulateToolpathHandler(deps *Dependencies) mcp.ToolHandlerFor[SimulateToolpathInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SimulateToolpathInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Program == "" && len(input.Setup) == 0 {
			return ErrorResult("Nothing to simulate", "Provide a stored program reference or an inline setup"), nil, nil
		}
		if input.Program != "" && len(input.Setup) > 0 {
			return ErrorResult("Ambiguous input", "Provide either program or setup, not both"), nil, nil
		}

		samples := input.Samples
		if samples <= 0 {
			samples = 200
		}

		var setup *model.Setup
		if input.Program != "" {
			if deps.Programs == nil {
				return ErrorResult("Stored programs are not available", "The server was started without a database"), nil, nil
			}
			var err error
			setup, _, err = deps.Programs.Setup(ctx, input.Program)
			if err != nil {
				deps.Logger.Error("program lookup failed", "program", input.Program, "error", err)
				return ErrorResult("Program not found: "+input.Program, "Use list_programs to see what is stored"), nil, nil
			}
		} else {
			var err error
			setup, err = decodeSetupArg(input.Setup)
			if err != nil {
				return ErrorResult("Invalid setup: "+err.Error(), "Fix the setup fields and retry"), nil, nil
			}
		}

		if len(setup.Operations) == 0 {
			return ErrorResult("Setup has no operations", "Add at least one operation to simulate"), nil, nil
		}

		opts := toolpath.Options{SafeHeight: deps.postProfile().PostOptions().SafeHeight}
		pathStart := time.Now()
		pp := toolpath.BuildProgram(setup.Operations, opts)
		if deps.Collector != nil {
			deps.Collector.RecordTiming(metrics.OpToolpath, time.Since(pathStart))
		}

		result := SimulateToolpathResult{
			Operations: make([]OpPathResult, 0, len(pp.Ops)),
		}
		for i, oc := range pp.Ops {
			length := toolpath.ApproxLength(oc.Curve, samples)
			min, max := toolpath.Bounds(oc.Curve, samples)
			result.Operations = append(result.Operations, OpPathResult{
				Index:    oc.Index,
				Type:     setup.Operations[i].Type.String(),
				LengthMM: length,
				Min:      [3]float64{min.X, min.Y, min.Z},
				Max:      [3]float64{max.X, max.Y, max.Z},
				Warnings: oc.Warnings,
			})
		}

		wholeSamples := samples * len(pp.Ops)
		result.TotalMM = toolpath.ApproxLength(pp.Whole, wholeSamples)
		min, max := toolpath.Bounds(pp.Whole, wholeSamples)
		result.Min = [3]float64{min.X, min.Y, min.Z}
		result.Max = [3]float64{max.X, max.Y, max.Z}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("simulate_toolpath completed", "operations", len(pp.Ops), "total_mm", result.TotalMM)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
