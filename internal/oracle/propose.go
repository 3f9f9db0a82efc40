package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mbuchner/millwright/internal/model"
)

// setupSystemPrompt pins the exact JSON shape the rest of the pipeline
// expects. Everything downstream of the oracle is deterministic, so the
// model's only job is filling in this structure.
const setupSystemPrompt = `You are a CAM planning assistant for a 3-axis vertical milling machine.
Given a machining request, respond with a single JSON object describing the stock and the operations, inside a json code fence.

Schema:
{
  "stock": {
    "shape": "RECTANGULAR" | "CYLINDRICAL",
    "width": <mm, RECTANGULAR only>,
    "length": <mm, RECTANGULAR only>,
    "diameter": <mm, CYLINDRICAL only>,
    "height": <mm>,
    "material": "<free text>"
  },
  "operations": [
    {
      "type": "FACE_MILL" | "CIRCULAR_POCKET" | "RECTANGULAR_POCKET" | "DRILL" | "CONTOUR",
      "x": <mm>, "y": <mm>,
      "z_depth": <mm, positive, measured down from the stock top>,
      "width": <mm>, "length": <mm>, "diameter": <mm>,
      "tool_type": "END_MILL" | "BALL_MILL" | "DRILL" | "FACE_MILL",
      "tool_diameter": <mm>,
      "feed_rate": <mm/min>, "spindle_speed": <rpm>, "step_down": <mm>,
      "path_segments": [
        {"type": "LINE" | "ARC_CW" | "ARC_CCW", "x": <mm>, "y": <mm>, "cx": <mm>, "cy": <mm>}
      ]
    }
  ],
  "explanation": "<one or two sentences on the plan>"
}

Rules:
- X and Y are absolute workpiece coordinates; the origin is the stock top center for cylindrical stock and the front-left top corner for rectangular stock.
- z_depth is always positive; the post negates it.
- path_segments appear only on CONTOUR operations and start from the operation's x/y.
- Arc centers cx/cy are absolute coordinates, never offsets.
- Pick conservative feeds and speeds for the named material.
- Output the JSON fence and nothing else.`

// ProposeSetup asks the model for a setup matching the request. When a
// current setup is given the model revises it instead of starting over.
func (o *Oracle) ProposeSetup(ctx context.Context, request string, current *model.Setup) (*model.Setup, error) {
	userPrompt, err := buildUserPrompt(request, current)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := o.GenerateWithSystem(ctx, setupSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("propose setup: %w", err)
	}
	slog.Debug("oracle responded", "model", o.modelName, "duration_ms", time.Since(start).Milliseconds(), "response_len", len(response))

	return parseSetupResponse(response)
}

// ProposeSetupFromImage proposes a setup from a part drawing or photo.
func (o *Oracle) ProposeSetupFromImage(ctx context.Context, request string, image []byte, mimeType string) (*model.Setup, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if request == "" {
		request = "Plan the machining operations for the part shown in the image."
	}

	response, err := o.generateWithImage(ctx, setupSystemPrompt, request, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("propose setup from image: %w", err)
	}

	return parseSetupResponse(response)
}

func buildUserPrompt(request string, current *model.Setup) (string, error) {
	if current == nil {
		return request, nil
	}

	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode current setup: %w", err)
	}

	return fmt.Sprintf(`Current setup:
%s

Revise it per this request, keeping everything not mentioned unchanged:
%s`, currentJSON, request), nil
}

func parseSetupResponse(response string) (*model.Setup, error) {
	raw := extractJSON(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	setup, err := model.DecodeSetup([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("proposed setup: %w", err)
	}
	return setup, nil
}

// extractJSON pulls the JSON payload out of a model response: a json
// code fence if present, any code fence otherwise, and as a last resort
// the outermost brace pair.
func extractJSON(s string) string {
	for _, marker := range []string{"```json", "```"} {
		if start := strings.Index(s, marker); start >= 0 {
			rest := s[start+len(marker):]
			if end := strings.Index(rest, "```"); end >= 0 {
				candidate := strings.TrimSpace(rest[:end])
				if strings.HasPrefix(candidate, "{") {
					return candidate
				}
			}
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(s[start : end+1])
	}
	return ""
}
