package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("../config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Simulation.Name != "intercept" {
		t.Errorf("Expected simulation name 'intercept', got '%s'", config.Simulation.Name)
	}

	if config.Simulation.TickInterval != 0 {
		t.Errorf("Expected tick interval 0, got %v", config.Simulation.TickInterval)
	}

	if config.Fleet.CarrierCount != 5 {
		t.Errorf("Expected 5 carriers, got %d", config.Fleet.CarrierCount)
	}

	if config.Fleet.Bounds.Max != 40 {
		t.Errorf("Expected bounds max 40, got %f", config.Fleet.Bounds.Max)
	}

	if config.Swarm.LaunchPoint.Z != 15 {
		t.Errorf("Expected launch altitude 15, got %f", config.Swarm.LaunchPoint.Z)
	}

	if config.Countermeasures.Chaff.Duration != 50 {
		t.Errorf("Expected chaff duration 50, got %d", config.Countermeasures.Chaff.Duration)
	}

	if config.Countermeasures.CornerReflector.Duration != 100 {
		t.Errorf("Expected corner reflector duration 100, got %d", config.Countermeasures.CornerReflector.Duration)
	}

	if config.Countermeasures.Chaff.TriggerProbability != 0.01 {
		t.Errorf("Expected trigger probability 0.01, got %f", config.Countermeasures.Chaff.TriggerProbability)
	}

	if config.Sensor.DetectionProbability != 0.9 {
		t.Errorf("Expected detection probability 0.9, got %f", config.Sensor.DetectionProbability)
	}

	if len(config.Sensor.Categories) != 5 {
		t.Errorf("Expected 5 sensor categories, got %d", len(config.Sensor.Categories))
	}

	if config.Sensor.PrimaryConfidence.StdDev != 0.1 {
		t.Errorf("Expected primary confidence std 0.1, got %f", config.Sensor.PrimaryConfidence.StdDev)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("fleet:\n  carrier_count: 2\nsimulation:\n  name: partial\n  tick_interval: 100ms\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Fleet.CarrierCount != 2 {
		t.Errorf("Expected 2 carriers, got %d", config.Fleet.CarrierCount)
	}
	if config.Simulation.TickInterval != 100*time.Millisecond {
		t.Errorf("Expected tick interval 100ms, got %v", config.Simulation.TickInterval)
	}
	if config.Swarm.MaxSteps != 500 {
		t.Errorf("Expected default max steps 500, got %d", config.Swarm.MaxSteps)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")

	original := GetDefaultConfig()
	original.Simulation.Seed = 77
	original.Simulation.TickInterval = 250 * time.Millisecond

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Simulation.Seed != 77 {
		t.Errorf("Expected seed 77, got %d", loaded.Simulation.Seed)
	}
	if loaded.Simulation.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected tick interval 250ms, got %v", loaded.Simulation.TickInterval)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config validation failed: %v", err)
	}

	if config.Simulation.Name != "intercept" {
		t.Errorf("Expected default simulation name 'intercept', got '%s'", config.Simulation.Name)
	}

	engine := config.EngineConfig(9)
	if err := engine.Validate(); err != nil {
		t.Errorf("Default engine config invalid: %v", err)
	}
	if engine.Seed != 9 {
		t.Errorf("Expected seed 9, got %d", engine.Seed)
	}
	if engine.Countermeasures.CornerReflector.Duration != 100 {
		t.Errorf("Expected corner reflector duration 100, got %d", engine.Countermeasures.CornerReflector.Duration)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SimulationConfig)
		hasErr bool
	}{
		{
			name:   "empty name",
			modify: func(c *SimulationConfig) { c.Simulation.Name = "" },
			hasErr: true,
		},
		{
			name:   "negative tick interval",
			modify: func(c *SimulationConfig) { c.Simulation.TickInterval = -1 * time.Second },
			hasErr: true,
		},
		{
			name:   "zero carriers",
			modify: func(c *SimulationConfig) { c.Fleet.CarrierCount = 0 },
			hasErr: true,
		},
		{
			name:   "invalid detection probability",
			modify: func(c *SimulationConfig) { c.Sensor.DetectionProbability = 1.5 },
			hasErr: true,
		},
		{
			name:   "too few sensor categories",
			modify: func(c *SimulationConfig) { c.Sensor.Categories = []float64{0.1, 0.2, 0.2, 0.3, 0.4} },
			hasErr: true,
		},
		{
			name:   "spawn outside bounds",
			modify: func(c *SimulationConfig) { c.Fleet.Spawn.Max = 45 },
			hasErr: true,
		},
		{
			name:   "zero chaff duration",
			modify: func(c *SimulationConfig) { c.Countermeasures.Chaff.Duration = 0 },
			hasErr: true,
		},
		{
			name:   "unknown report format",
			modify: func(c *SimulationConfig) { c.Recording.ReportFormat = "pdf" },
			hasErr: true,
		},
		{
			name:   "stream without address",
			modify: func(c *SimulationConfig) { c.Stream.Enabled = true; c.Stream.Address = "" },
			hasErr: true,
		},
		{
			name:   "zero missiles",
			modify: func(c *SimulationConfig) { c.Swarm.MissileCount = 0 },
			hasErr: false,
		},
		{
			name:   "valid config",
			modify: func(c *SimulationConfig) {},
			hasErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.hasErr && err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
			if !tt.hasErr && err != nil {
				t.Errorf("Unexpected validation error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	config := GetDefaultConfig()

	t.Setenv("NUM_CARRIERS", "8")
	t.Setenv("NUM_MISSILES", "12")
	t.Setenv("DETECTION_PROBABILITY", "0.75")
	t.Setenv("SIM_SEED", "4242")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SIM_TICK_INTERVAL", "50ms")

	MergeWithEnvironment(config)

	if config.Fleet.CarrierCount != 8 {
		t.Errorf("Expected 8 carriers, got %d", config.Fleet.CarrierCount)
	}

	if config.Swarm.MissileCount != 12 {
		t.Errorf("Expected 12 missiles, got %d", config.Swarm.MissileCount)
	}

	if config.Sensor.DetectionProbability != 0.75 {
		t.Errorf("Expected detection probability 0.75, got %f", config.Sensor.DetectionProbability)
	}

	if config.Simulation.Seed != 4242 {
		t.Errorf("Expected seed 4242, got %d", config.Simulation.Seed)
	}

	if config.Logging.ConsoleLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", config.Logging.ConsoleLevel)
	}

	if config.Simulation.TickInterval != 50*time.Millisecond {
		t.Errorf("Expected tick interval 50ms, got %v", config.Simulation.TickInterval)
	}
}

func TestEnvironmentOverridesIgnoreInvalid(t *testing.T) {
	config := GetDefaultConfig()

	t.Setenv("NUM_CARRIERS", "-3")
	t.Setenv("DETECTION_PROBABILITY", "2")
	t.Setenv("LOG_LEVEL", "loud")

	MergeWithEnvironment(config)

	if config.Fleet.CarrierCount != 5 {
		t.Errorf("Expected carrier count to stay 5, got %d", config.Fleet.CarrierCount)
	}
	if config.Sensor.DetectionProbability != 0.9 {
		t.Errorf("Expected detection probability to stay 0.9, got %f", config.Sensor.DetectionProbability)
	}
	if config.Logging.ConsoleLevel != "info" {
		t.Errorf("Expected log level to stay 'info', got '%s'", config.Logging.ConsoleLevel)
	}
}

func TestCLIOverrides(t *testing.T) {
	config := GetDefaultConfig()

	overrides := map[string]interface{}{
		"num_carriers":                     2,
		"num_missiles":                     1,
		"max_steps":                        float64(300),
		"chaff_max_occurrences":            0,
		"corner_reflector_max_occurrences": "0",
		"missile_speed":                    0.03,
		"report_format":                    "json",
		"tick_interval":                    "20ms",
		"verbose_logging":                  true,
	}

	MergeWithCLIOverrides(config, overrides)

	if config.Fleet.CarrierCount != 2 {
		t.Errorf("Expected 2 carriers, got %d", config.Fleet.CarrierCount)
	}

	if config.Swarm.MissileCount != 1 {
		t.Errorf("Expected 1 missile, got %d", config.Swarm.MissileCount)
	}

	if config.Swarm.MaxSteps != 300 {
		t.Errorf("Expected max steps 300, got %d", config.Swarm.MaxSteps)
	}

	if config.Countermeasures.Chaff.MaxOccurrences != 0 || config.Countermeasures.CornerReflector.MaxOccurrences != 0 {
		t.Errorf("Expected countermeasures disabled, got %d/%d",
			config.Countermeasures.Chaff.MaxOccurrences, config.Countermeasures.CornerReflector.MaxOccurrences)
	}

	if config.Swarm.MissileSpeed != 0.03 {
		t.Errorf("Expected missile speed 0.03, got %f", config.Swarm.MissileSpeed)
	}

	if config.Recording.ReportFormat != "json" {
		t.Errorf("Expected report format 'json', got '%s'", config.Recording.ReportFormat)
	}

	if config.Simulation.TickInterval != 20*time.Millisecond {
		t.Errorf("Expected tick interval 20ms, got %v", config.Simulation.TickInterval)
	}

	if !config.Logging.VerboseLogging {
		t.Errorf("Expected verbose logging to be enabled")
	}
}
