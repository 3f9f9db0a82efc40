// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Generate  *service.GenerateService
	Programs  *service.ProgramService
	Profile   *profile.Profile
	Collector *metrics.Collector
	Logger    *slog.Logger
}

// postProfile returns the machine profile, defaulting when unset so
// handlers can always emit.
func (d *Dependencies) postProfile() *profile.Profile {
	if d.Profile != nil {
		return d.Profile
	}
	return profile.Default()
}
