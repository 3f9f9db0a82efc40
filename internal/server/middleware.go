package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxArgLogLen is the maximum length for logged arguments before truncation.
const maxArgLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 100 * time.Millisecond

// oracleSlowThreshold applies to generate_program calls, which spend
// seconds in the model round trip. Flagging those at 100ms would turn
// every generation into a WARN line.
const oracleSlowThreshold = 30 * time.Second

// LoggingMiddleware returns middleware that logs all requests with timing.
// Slow requests are logged at WARN level; oracle-backed calls get a wider
// budget. Arguments are truncated to 200 characters.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()

			// Call the next handler
			result, err := next(ctx, method, req)

			duration := time.Since(start)

			// Build log attributes
			attrs := []any{
				"method", method,
				"duration_ms", duration.Milliseconds(),
			}
			if tool := toolName(method, req); tool != "" {
				attrs = append(attrs, "tool", tool)
			}

			// Add truncated params if present
			if params := formatParams(req); params != "" {
				attrs = append(attrs, "params", truncate(params, maxArgLogLen))
			}

			// Log based on duration and error
			if err != nil {
				attrs = append(attrs, "error", err.Error())
				logger.Error("request failed", attrs...)
			} else if duration > thresholdFor(method, req) {
				logger.Warn("slow request", attrs...)
			} else {
				logger.Debug("request completed", attrs...)
			}

			return result, err
		}
	}
}

// toolName extracts the called tool's name from a tools/call request.
func toolName(method string, req mcp.Request) string {
	if method != "tools/call" {
		return ""
	}
	if p, ok := req.GetParams().(*mcp.CallToolParams); ok {
		return p.Name
	}
	return ""
}

// thresholdFor picks the slow-request cutoff for one request.
func thresholdFor(method string, req mcp.Request) time.Duration {
	if toolName(method, req) == "generate_program" {
		return oracleSlowThreshold
	}
	return slowRequestThreshold
}

// formatParams extracts and formats request parameters for logging.
func formatParams(req mcp.Request) string {
	// Try to get params using the Request interface
	params := req.GetParams()
	if params == nil {
		return ""
	}
	return fmt.Sprintf("%+v", params)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
