// Package profile loads machine profiles and tool tables.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/post"
)

// Profile describes a machine: its identity, motion limits, the post
// settings used when emitting programs for it, and the tools mounted in
// its magazine.
type Profile struct {
	// Machine is the display name, e.g. "DMU 50".
	Machine string `yaml:"machine"`

	// Controller identifies the control family the post targets.
	Controller string `yaml:"controller"`

	Limits Limits `yaml:"limits"`
	Post   Post   `yaml:"post"`
	Tools  []Tool `yaml:"tools"`
}

// Limits holds the machine's motion and spindle envelope.
type Limits struct {
	MaxSpindleRPM float64 `yaml:"max_spindle_rpm"`
	MaxFeedRate   float64 `yaml:"max_feed_rate"`
	Travel        Travel  `yaml:"travel"`
}

// Travel is the axis travel in millimeters.
type Travel struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Post carries per-machine overrides for program emission. Zero values
// fall back to the emitter defaults.
type Post struct {
	SafeHeight     float64 `yaml:"safe_height"`
	BlendTolerance float64 `yaml:"blend_tolerance"`
	FaceExtent     float64 `yaml:"face_extent"`
}

// Tool is one magazine entry.
type Tool struct {
	Name     string         `yaml:"name"`
	Type     model.ToolType `yaml:"type"`
	Diameter float64        `yaml:"diameter"`
	Flutes   int            `yaml:"flutes"`
}

// Default returns the profile used when none is configured: a generous
// envelope and an empty tool table, so nothing is rejected.
func Default() *Profile {
	return &Profile{
		Machine:    "generic",
		Controller: "sinumerik-828d",
	}
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

// Parse unmarshals a YAML profile and checks it for internal consistency.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Machine == "" {
		return nil, fmt.Errorf("profile is missing a machine name")
	}
	for i, tool := range p.Tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("tool %d has no name", i)
		}
		if tool.Diameter <= 0 {
			return nil, fmt.Errorf("tool %q has diameter %g", tool.Name, tool.Diameter)
		}
	}
	return &p, nil
}

// PostOptions maps the profile's post section onto emitter options.
func (p *Profile) PostOptions() post.Options {
	return post.Options{
		SafeHeight:     p.Post.SafeHeight,
		BlendTolerance: p.Post.BlendTolerance,
		FaceExtent:     p.Post.FaceExtent,
	}
}

// FindTool looks up a magazine entry matching type and diameter.
func (p *Profile) FindTool(tt model.ToolType, diameter float64) (Tool, bool) {
	for _, tool := range p.Tools {
		if tool.Type == tt && sameDiameter(tool.Diameter, diameter) {
			return tool, true
		}
	}
	return Tool{}, false
}

func sameDiameter(a, b float64) bool {
	const eps = 1e-6
	d := a - b
	return d > -eps && d < eps
}

// CheckOperations validates operations against the machine envelope and
// tool table. An empty tool table skips availability checks.
func (p *Profile) CheckOperations(ops []model.Operation) []model.ValidationError {
	var errs []model.ValidationError

	for i, op := range ops {
		field := func(name string) string {
			return fmt.Sprintf("operations[%d].%s", i, name)
		}

		if p.Limits.MaxSpindleRPM > 0 && op.SpindleSpeed > p.Limits.MaxSpindleRPM {
			errs = append(errs, model.ValidationError{
				Field:   field("spindle_speed"),
				Message: fmt.Sprintf("%g rpm exceeds machine limit %g", op.SpindleSpeed, p.Limits.MaxSpindleRPM),
			})
		}
		if p.Limits.MaxFeedRate > 0 && op.FeedRate > p.Limits.MaxFeedRate {
			errs = append(errs, model.ValidationError{
				Field:   field("feed_rate"),
				Message: fmt.Sprintf("%g mm/min exceeds machine limit %g", op.FeedRate, p.Limits.MaxFeedRate),
			})
		}
		if p.Limits.Travel.Z > 0 && op.ZDepth > p.Limits.Travel.Z {
			errs = append(errs, model.ValidationError{
				Field:   field("z_depth"),
				Message: fmt.Sprintf("%g mm exceeds Z travel %g", op.ZDepth, p.Limits.Travel.Z),
			})
		}
		if len(p.Tools) > 0 {
			if _, ok := p.FindTool(op.ToolType, op.ToolDiameter); !ok {
				errs = append(errs, model.ValidationError{
					Field:   field("tool_diameter"),
					Message: fmt.Sprintf("no %s with diameter %g in the tool table", op.ToolType, op.ToolDiameter),
				})
			}
		}
	}

	return errs
}
