package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Setup is the complete machining description produced by one oracle round
// trip: stock plus the accumulated operation list. A setup is immutable once
// validated; follow-up requests produce a fresh setup carrying the extended
// list, and all derived artifacts are recomputed from scratch.
type Setup struct {
	Stock       StockDescription `json:"stock" yaml:"stock"`
	Operations  []Operation      `json:"operations" yaml:"operations"`
	Explanation string           `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Program pairs emitted NC text with the setup that produced it, so stored
// artifacts can be re-rendered and traced back to their inputs.
type Program struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Setup Setup  `json:"setup" yaml:"setup"`
	Text  string `json:"text" yaml:"text"`
}

// DecodeSetup parses and validates a JSON setup.
func DecodeSetup(data []byte) (*Setup, error) {
	var s Setup
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode setup: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeSetupYAML parses and validates a YAML setup.
func DecodeSetupYAML(data []byte) (*Setup, error) {
	var s Setup
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode setup: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Check wraps all Validate findings into a single error, nil when valid.
func (s *Setup) Check() error {
	errs := s.Validate()
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return fmt.Errorf("invalid setup: %w", errors.Join(joined...))
}
