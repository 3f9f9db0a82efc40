package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mbuchner/millwright/internal/service"
)

// GenerateProgramInput defines the input schema for the generate_program tool.
type GenerateProgramInput struct {
	Request   string `json:"request" jsonschema:"required,Plain-language machining request"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Session to extend; omit to start a new one"`
	SaveAs    string `json:"save_as,omitempty" jsonschema:"Store the resulting program under this name"`
}

// GenerateProgramResult is the response from the generate_program tool.
type GenerateProgramResult struct {
	SessionID   string   `json:"session_id"`
	Revision    int      `json:"revision"`
	Operations  int      `json:"operations"`
	Program     string   `json:"program"`
	Explanation string   `json:"explanation,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	SavedAs     string   `json:"saved_as,omitempty"`
	SavedSlug   string   `json:"saved_slug,omitempty"`
}

// NewGenerateProgramHandler creates the generate_program tool handler.
// Each call runs one oracle round trip; passing session_id extends the
// accumulated setup instead of starting over. A rejected proposal leaves
// the session untouched, so the caller can rephrase and retry.
func NewGenerateProgramHandler(deps *Dependencies) mcp.ToolHandlerFor[GenerateProgramInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateProgramInput) (
		*mcp.CallToolResult, any, error,
	) {
		// Input validation
		if input.Request == "" {
			return ErrorResult("Request cannot be empty", "Describe the part or the change to machine"), nil, nil
		}
		if deps.Generate == nil {
			return ErrorResult("Generation is not available", "The server was started without an oracle"), nil, nil
		}

		// Resolve the session: resume on session_id, fresh otherwise
		var sess *service.Session
		if input.SessionID != "" {
			var err error
			sess, err = deps.Generate.Resume(ctx, input.SessionID)
			if err != nil {
				deps.Logger.Error("session resume failed", "session_id", input.SessionID, "error", err)
				return ErrorResult("Unknown session "+input.SessionID, "Omit session_id to start a new session"), nil, nil
			}
		} else {
			sess = deps.Generate.NewSession()
		}

		res, err := deps.Generate.Request(ctx, sess.ID, input.Request)
		if err != nil {
			deps.Logger.Error("generation failed", "session_id", sess.ID, "error", err)
			return ErrorResult("Generation failed: "+err.Error(), "Adjust the request and retry with the same session_id"), nil, nil
		}

		result := GenerateProgramResult{
			SessionID:   res.SessionID,
			Revision:    res.Revision,
			Operations:  len(res.Setup.Operations),
			Program:     res.Text,
			Explanation: res.Setup.Explanation,
			Warnings:    res.Warnings,
		}

		// Saving is best-effort: a failed save surfaces as a warning, the
		// generated program is still returned.
		if input.SaveAs != "" {
			rec, err := deps.Generate.Save(ctx, sess.ID, input.SaveAs)
			if err != nil {
				deps.Logger.Warn("save failed", "session_id", sess.ID, "error", err)
				result.Warnings = append(result.Warnings, "save failed: "+err.Error())
			} else {
				result.SavedAs = rec.Name
				result.SavedSlug = rec.Slug
			}
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("generate_program completed", "session_id", res.SessionID, "revision", res.Revision)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
