package simulation

import (
	"context"
	"testing"
	"time"
)

type stubSimulation struct{ name string }

func (s *stubSimulation) Name() string { return s.name }
func (s *stubSimulation) Description() string { return "stub" }
func (s *stubSimulation) Configure(params map[string]interface{}) error { return nil }
func (s *stubSimulation) Run(ctx context.Context) error { return nil }
func (s *stubSimulation) Stop() error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"beta", "alpha"} {
		name := name
		if err := r.Register(name, func() Simulation { return &stubSimulation{name: name} }); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	if err := r.Register("alpha", func() Simulation { return &stubSimulation{} }); err == nil {
		t.Errorf("Expected duplicate registration to fail")
	}

	names := r.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Expected sorted names [alpha beta], got %v", names)
	}

	if !r.Has("beta") || r.Has("gamma") {
		t.Errorf("Unexpected Has results")
	}

	sim, err := r.Get("beta")
	if err != nil {
		t.Fatalf("Failed to get beta: %v", err)
	}
	if sim.Name() != "beta" {
		t.Errorf("Expected beta, got %s", sim.Name())
	}

	if _, err := r.Get("gamma"); err == nil {
		t.Errorf("Expected error for unknown simulation")
	}
}

func TestParameterCheck(t *testing.T) {
	tests := []struct {
		name   string
		param  Parameter
		value  interface{}
		hasErr bool
	}{
		{name: "integer in range", param: Parameter{Type: "integer", Min: 1, Max: 20}, value: 5},
		{name: "integer below min", param: Parameter{Type: "integer", Min: 1}, value: 0, hasErr: true},
		{name: "integer from float", param: Parameter{Type: "integer"}, value: 3.0},
		{name: "fractional integer", param: Parameter{Type: "integer"}, value: 3.5, hasErr: true},
		{name: "float above max", param: Parameter{Type: "float", Max: 1}, value: 1.5, hasErr: true},
		{name: "float float bounds", param: Parameter{Type: "float", Min: 0.0, Max: 1.0}, value: 0.9},
		{name: "not a number", param: Parameter{Type: "float"}, value: true, hasErr: true},
		{name: "string option", param: Parameter{Type: "string", Options: []string{"json", "markdown"}}, value: "json"},
		{name: "string bad option", param: Parameter{Type: "string", Options: []string{"json"}}, value: "pdf", hasErr: true},
		{name: "boolean", param: Parameter{Type: "boolean"}, value: false},
		{name: "boolean as string", param: Parameter{Type: "boolean"}, value: "yes", hasErr: true},
		{name: "duration string", param: Parameter{Type: "duration"}, value: "250ms"},
		{name: "duration value", param: Parameter{Type: "duration"}, value: time.Second},
		{name: "bad duration", param: Parameter{Type: "duration"}, value: "soon", hasErr: true},
		{name: "unknown type", param: Parameter{Type: "matrix"}, value: 1, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.param.Check(tt.value)
			if tt.hasErr && err == nil {
				t.Errorf("Expected error checking %v", tt.value)
			}
			if !tt.hasErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSimulationConfigParameter(t *testing.T) {
	cfg := SimulationConfig{Parameters: []Parameter{{Name: "num_carriers", Default: 5}}}

	p, ok := cfg.Parameter("num_carriers")
	if !ok || p.Default != 5 {
		t.Errorf("Expected num_carriers descriptor, got %+v (%v)", p, ok)
	}
	if _, ok := cfg.Parameter("missing"); ok {
		t.Errorf("Expected missing parameter lookup to fail")
	}
}
