package simulation

import (
	"fmt"
	"strconv"
	"time"
)

// SimulationConfig represents the configuration structure for a simulation
// loaded from simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Parameter returns the descriptor with the given name
func (c SimulationConfig) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Check validates a value from a preset, params file or environment against the
// descriptor's type, range and options
func (p Parameter) Check(value interface{}) error {
	switch p.Type {
	case "integer", "float":
		v, ok := number(value)
		if !ok {
			return fmt.Errorf("%s: expected a number, got %v", p.Name, value)
		}
		if p.Type == "integer" && v != float64(int64(v)) {
			return fmt.Errorf("%s: expected an integer, got %v", p.Name, value)
		}
		if lo, ok := number(p.Min); ok && v < lo {
			return fmt.Errorf("%s: value must be at least %v", p.Name, p.Min)
		}
		if hi, ok := number(p.Max); ok && v > hi {
			return fmt.Errorf("%s: value must be at most %v", p.Name, p.Max)
		}
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %v", p.Name, value)
		}
		if len(p.Options) > 0 && !contains(p.Options, s) {
			return fmt.Errorf("%s: %q is not one of %v", p.Name, s, p.Options)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected a boolean, got %v", p.Name, value)
		}
	case "duration":
		switch v := value.(type) {
		case time.Duration:
		case string:
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
		default:
			return fmt.Errorf("%s: expected a duration, got %v", p.Name, value)
		}
	default:
		return fmt.Errorf("%s: unsupported parameter type: %s", p.Name, p.Type)
	}
	return nil
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
