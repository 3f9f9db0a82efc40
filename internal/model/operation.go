package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// OperationType discriminates the machining operation variants. Every
// consumer (cycle template selection, curve building) switches exhaustively
// over it; adding a variant means extending each of those switches.
type OperationType int

const (
	OpFaceMill OperationType = iota
	OpCircularPocket
	OpRectangularPocket
	OpDrill
	OpContour
)

func (t OperationType) String() string {
	switch t {
	case OpFaceMill:
		return "FACE_MILL"
	case OpCircularPocket:
		return "CIRCULAR_POCKET"
	case OpRectangularPocket:
		return "RECTANGULAR_POCKET"
	case OpDrill:
		return "DRILL"
	case OpContour:
		return "CONTOUR"
	default:
		return fmt.Sprintf("OperationType(%d)", int(t))
	}
}

// ParseOperationType maps a wire tag to its OperationType.
func ParseOperationType(s string) (OperationType, error) {
	switch s {
	case "FACE_MILL":
		return OpFaceMill, nil
	case "CIRCULAR_POCKET":
		return OpCircularPocket, nil
	case "RECTANGULAR_POCKET":
		return OpRectangularPocket, nil
	case "DRILL":
		return OpDrill, nil
	case "CONTOUR":
		return OpContour, nil
	default:
		return 0, fmt.Errorf("unknown operation type %q", s)
	}
}

func (t OperationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OperationType) UnmarshalText(text []byte) error {
	parsed, err := ParseOperationType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t OperationType) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *OperationType) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(raw))
}

// ToolType classifies the cutting tool an operation runs with.
type ToolType int

const (
	ToolEndMill ToolType = iota
	ToolBallMill
	ToolDrill
	ToolFaceMill
)

func (t ToolType) String() string {
	switch t {
	case ToolEndMill:
		return "END_MILL"
	case ToolBallMill:
		return "BALL_MILL"
	case ToolDrill:
		return "DRILL"
	case ToolFaceMill:
		return "FACE_MILL"
	default:
		return fmt.Sprintf("ToolType(%d)", int(t))
	}
}

// ParseToolType maps a wire tag to its ToolType.
func ParseToolType(s string) (ToolType, error) {
	switch s {
	case "END_MILL":
		return ToolEndMill, nil
	case "BALL_MILL":
		return ToolBallMill, nil
	case "DRILL":
		return ToolDrill, nil
	case "FACE_MILL":
		return ToolFaceMill, nil
	default:
		return 0, fmt.Errorf("unknown tool type %q", s)
	}
}

func (t ToolType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ToolType) UnmarshalText(text []byte) error {
	parsed, err := ParseToolType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ToolType) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *ToolType) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(raw))
}

// SegmentType discriminates contour path segment variants.
type SegmentType int

const (
	SegLine SegmentType = iota
	SegArcCW
	SegArcCCW
)

func (t SegmentType) String() string {
	switch t {
	case SegLine:
		return "LINE"
	case SegArcCW:
		return "ARC_CW"
	case SegArcCCW:
		return "ARC_CCW"
	default:
		return fmt.Sprintf("SegmentType(%d)", int(t))
	}
}

// ParseSegmentType maps a wire tag to its SegmentType.
func ParseSegmentType(s string) (SegmentType, error) {
	switch s {
	case "LINE":
		return SegLine, nil
	case "ARC_CW":
		return SegArcCW, nil
	case "ARC_CCW":
		return SegArcCCW, nil
	default:
		return 0, fmt.Errorf("unknown segment type %q", s)
	}
}

func (t SegmentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SegmentType) UnmarshalText(text []byte) error {
	parsed, err := ParseSegmentType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t SegmentType) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *SegmentType) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(raw))
}

// PathSegment is one element of a contour chain. Its implicit start point is
// the previous segment's end point, or the owning operation's (X, Y) for the
// first segment. Arc segments carry their center as an absolute coordinate,
// never as an offset from the start point and never as a radius.
type PathSegment struct {
	Type SegmentType `json:"type" yaml:"type"`
	X    float64     `json:"x" yaml:"x"`
	Y    float64     `json:"y" yaml:"y"`
	CX   float64     `json:"cx,omitempty" yaml:"cx,omitempty"`
	CY   float64     `json:"cy,omitempty" yaml:"cy,omitempty"`
}

// IsArc reports whether the segment is circular in either sense.
func (s PathSegment) IsArc() bool {
	return s.Type == SegArcCW || s.Type == SegArcCCW
}

// Operation is one discrete machining step. ZDepth is a positive magnitude
// below Z=0. Zero-valued numeric fields mean "not specified"; downstream
// emitters render them as 0 rather than failing, so a partially specified
// operation still yields reviewable output.
type Operation struct {
	Type         OperationType `json:"type" yaml:"type"`
	X            float64       `json:"x" yaml:"x"`
	Y            float64       `json:"y" yaml:"y"`
	ZDepth       float64       `json:"z_depth" yaml:"z_depth"`
	Width        float64       `json:"width,omitempty" yaml:"width,omitempty"`
	Length       float64       `json:"length,omitempty" yaml:"length,omitempty"`
	Diameter     float64       `json:"diameter,omitempty" yaml:"diameter,omitempty"`
	ToolType     ToolType      `json:"tool_type" yaml:"tool_type"`
	ToolDiameter float64       `json:"tool_diameter" yaml:"tool_diameter"`
	FeedRate     float64       `json:"feed_rate,omitempty" yaml:"feed_rate,omitempty"`
	SpindleSpeed float64       `json:"spindle_speed,omitempty" yaml:"spindle_speed,omitempty"`
	StepDown     float64       `json:"step_down,omitempty" yaml:"step_down,omitempty"`
	PathSegments []PathSegment `json:"path_segments,omitempty" yaml:"path_segments,omitempty"`
}

func (o Operation) String() string {
	return fmt.Sprintf("%s at (%g, %g) depth %g", o.Type, o.X, o.Y, o.ZDepth)
}
