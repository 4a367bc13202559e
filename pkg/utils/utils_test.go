package utils

import (
	"testing"
	"time"

	"github.com/picogrid/interceptor-simulations/pkg/simulation"
)

func TestParseEnvValue(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		param    simulation.Parameter
		expected interface{}
		hasErr   bool
	}{
		{name: "integer", value: "12", param: simulation.Parameter{Type: "integer"}, expected: 12},
		{name: "float", value: "0.75", param: simulation.Parameter{Type: "float"}, expected: 0.75},
		{name: "string", value: "json", param: simulation.Parameter{Type: "string"}, expected: "json"},
		{name: "boolean", value: "true", param: simulation.Parameter{Type: "boolean"}, expected: true},
		{name: "duration", value: "20ms", param: simulation.Parameter{Type: "duration"}, expected: 20 * time.Millisecond},
		{name: "bad integer", value: "many", param: simulation.Parameter{Type: "integer"}, hasErr: true},
		{name: "unknown type", value: "x", param: simulation.Parameter{Type: "matrix"}, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEnvValue(tt.value, tt.param)
			if tt.hasErr {
				if err == nil {
					t.Errorf("Expected error parsing %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDefaultParametersPrecedence(t *testing.T) {
	params := []simulation.Parameter{
		{Name: "num_carriers", Type: "integer", Default: 5},
		{Name: "num_missiles", Type: "integer", Default: 5},
		{Name: "max_steps", Type: "integer", Default: 500},
		{Name: "config_file", Type: "string"},
	}

	t.Setenv("INTERCEPTOR_NUM_MISSILES", "9")
	t.Setenv("INTERCEPTOR_MAX_STEPS", "40")

	preset := map[string]interface{}{
		"max_steps": 100,
		"seed":      3,
	}

	result, err := DefaultParameters(params, preset)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result["num_carriers"] != 5 {
		t.Errorf("Expected default num_carriers 5, got %v", result["num_carriers"])
	}
	if result["num_missiles"] != 9 {
		t.Errorf("Expected env num_missiles 9, got %v", result["num_missiles"])
	}
	if result["max_steps"] != 100 {
		t.Errorf("Expected preset max_steps 100, got %v", result["max_steps"])
	}
	if result["seed"] != 3 {
		t.Errorf("Expected preset-only seed 3, got %v", result["seed"])
	}
	if _, ok := result["config_file"]; ok {
		t.Errorf("Expected optional parameter without default to be absent")
	}
}

func TestDefaultParametersRequired(t *testing.T) {
	params := []simulation.Parameter{{Name: "scenario_id", Type: "string", Required: true}}

	if _, err := DefaultParameters(params, nil); err == nil {
		t.Errorf("Expected error for required parameter without default")
	}
}

func TestDiscoverSimulations(t *testing.T) {
	info, err := FindSimulation("Interceptor Decoy Engagement")
	if err != nil {
		t.Fatalf("Failed to find simulation: %v", err)
	}

	if len(info.Config.Parameters) == 0 {
		t.Errorf("Expected parameter descriptors")
	}

	found := false
	for _, p := range info.Config.Parameters {
		if p.Name == "num_carriers" {
			found = true
			if p.Default != 5 {
				t.Errorf("Expected num_carriers default 5, got %v", p.Default)
			}
		}
	}
	if !found {
		t.Errorf("Expected num_carriers parameter")
	}

	if _, err := FindSimulation("Nonexistent"); err == nil {
		t.Errorf("Expected error for unknown simulation")
	}
}

func TestDefaultParametersRejectsOutOfRange(t *testing.T) {
	params := []simulation.Parameter{
		{Name: "num_carriers", Type: "integer", Default: 5, Min: 1, Max: 20},
		{Name: "report_format", Type: "string", Default: "markdown", Options: []string{"markdown", "json"}},
	}

	tests := []struct {
		name   string
		preset map[string]interface{}
		hasErr bool
	}{
		{name: "in range", preset: map[string]interface{}{"num_carriers": 3, "report_format": "json"}},
		{name: "below min", preset: map[string]interface{}{"num_carriers": 0}, hasErr: true},
		{name: "above max", preset: map[string]interface{}{"num_carriers": 21}, hasErr: true},
		{name: "fractional integer", preset: map[string]interface{}{"num_carriers": 2.5}, hasErr: true},
		{name: "unknown option", preset: map[string]interface{}{"report_format": "pdf"}, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultParameters(params, tt.preset)
			if tt.hasErr && err == nil {
				t.Errorf("Expected error for %v", tt.preset)
			}
			if !tt.hasErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
