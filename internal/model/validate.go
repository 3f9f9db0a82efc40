package model

import (
	"fmt"
	"math"
)

// ValidationError describes a single structural problem in a Setup.
type ValidationError struct {
	Field   string // dotted path into the setup, e.g. "operations[2].z_depth"
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate runs structural checks on a setup and returns all findings. An
// empty slice means the setup is structurally sound. This is the oracle
// boundary contract only: machining feasibility (collisions, reachability,
// speed and feed limits) is deliberately not checked here.
func (s *Setup) Validate() []ValidationError {
	var errs []ValidationError

	if math.IsNaN(s.Stock.Height) || s.Stock.Height <= 0 {
		errs = append(errs, ValidationError{
			Field:   "stock.height",
			Message: "height must be a positive stock thickness",
		})
	}

	for i, op := range s.Operations {
		prefix := fmt.Sprintf("operations[%d]", i)

		if math.IsNaN(op.X) || math.IsNaN(op.Y) {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: "x and y must be finite coordinates",
			})
		}
		if math.IsNaN(op.ZDepth) || op.ZDepth <= 0 {
			errs = append(errs, ValidationError{
				Field:   prefix + ".z_depth",
				Message: "z_depth must be a positive depth below the stock top",
			})
		}
		if op.ToolDiameter < 0 || math.IsNaN(op.ToolDiameter) {
			errs = append(errs, ValidationError{
				Field:   prefix + ".tool_diameter",
				Message: "tool_diameter must not be negative",
			})
		}

		switch op.Type {
		case OpContour:
			if len(op.PathSegments) == 0 {
				errs = append(errs, ValidationError{
					Field:   prefix + ".path_segments",
					Message: "contour requires at least one path segment",
				})
			}
		default:
			if len(op.PathSegments) > 0 {
				errs = append(errs, ValidationError{
					Field:   prefix + ".path_segments",
					Message: fmt.Sprintf("path_segments are not valid on %s operations", op.Type),
				})
			}
		}

		for j, seg := range op.PathSegments {
			if math.IsNaN(seg.X) || math.IsNaN(seg.Y) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.path_segments[%d]", prefix, j),
					Message: "x and y must be finite coordinates",
				})
			}
		}
	}

	return errs
}
