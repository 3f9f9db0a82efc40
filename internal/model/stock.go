// Package model defines the machining setup consumed by the rest of
// millwright: stock geometry, the ordered operation list, and the contour
// path segments operations may carry. Values are plain data; programs and
// toolpath curves are derived from them elsewhere and never stored back.
package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StockShape selects which dimension set of a StockDescription is
// meaningful.
type StockShape int

const (
	StockRectangular StockShape = iota
	StockCylindrical
)

func (s StockShape) String() string {
	switch s {
	case StockRectangular:
		return "RECTANGULAR"
	case StockCylindrical:
		return "CYLINDRICAL"
	default:
		return fmt.Sprintf("StockShape(%d)", int(s))
	}
}

// ParseStockShape maps a wire tag to its StockShape.
func ParseStockShape(s string) (StockShape, error) {
	switch s {
	case "RECTANGULAR":
		return StockRectangular, nil
	case "CYLINDRICAL":
		return StockCylindrical, nil
	default:
		return 0, fmt.Errorf("unknown stock shape %q", s)
	}
}

func (s StockShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StockShape) UnmarshalText(text []byte) error {
	parsed, err := ParseStockShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s StockShape) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *StockShape) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(raw))
}

// StockDescription is the raw material a program machines. Height is the
// stock thickness, measured downward from the top face at Z=0, and is always
// positive. Both dimension sets are retained regardless of shape so that
// values round-trip; consumers read only the set selected by Shape.
type StockDescription struct {
	Shape    StockShape `json:"shape" yaml:"shape"`
	Width    float64    `json:"width,omitempty" yaml:"width,omitempty"`
	Length   float64    `json:"length,omitempty" yaml:"length,omitempty"`
	Diameter float64    `json:"diameter,omitempty" yaml:"diameter,omitempty"`
	Height   float64    `json:"height" yaml:"height"`
	Material string     `json:"material,omitempty" yaml:"material,omitempty"`
}
