package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/interceptor-simulations/pkg/logger"
)

// LoadConfig loads configuration from a YAML file. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (*SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*SimulationConfig, error) {
	var config *SimulationConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	if config == nil {
		defaultPaths := []string{
			"config.yaml",
			"intercept.yaml",
			filepath.Join("cmd", "intercept", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, statErr := os.Stat(p); statErr == nil {
				config, err = LoadConfig(p)
				if err == nil {
					logger.Debugf("Loaded config from: %s", p)
					break
				}
				config = nil
			}
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	// Always apply environment variable overrides
	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *SimulationConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// toInt accepts the numeric shapes prompt answers and yaml presets come in
func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
	}
	return false, false
}

// MergeWithCLIOverrides applies prompted or preset parameter values to the configuration.
// Out-of-range values are ignored.
func MergeWithCLIOverrides(config *SimulationConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "num_carriers":
			if count, ok := toInt(value); ok && count > 0 {
				config.Fleet.CarrierCount = count
			}
		case "num_missiles":
			if count, ok := toInt(value); ok && count >= 0 {
				config.Swarm.MissileCount = count
			}
		case "carrier_speed":
			if speed, ok := toFloat(value); ok && speed >= 0 {
				config.Fleet.CarrierSpeed = speed
			}
		case "missile_speed":
			if speed, ok := toFloat(value); ok && speed >= 0 {
				config.Swarm.MissileSpeed = speed
			}
		case "max_steps":
			if steps, ok := toInt(value); ok && steps > 0 {
				config.Swarm.MaxSteps = steps
			}
		case "chaff_max_occurrences":
			if n, ok := toInt(value); ok && n >= 0 {
				config.Countermeasures.Chaff.MaxOccurrences = n
			}
		case "corner_reflector_max_occurrences":
			if n, ok := toInt(value); ok && n >= 0 {
				config.Countermeasures.CornerReflector.MaxOccurrences = n
			}
		case "detection_probability":
			if p, ok := toFloat(value); ok && p >= 0 && p <= 1 {
				config.Sensor.DetectionProbability = p
			}
		case "seed":
			if seed, ok := toInt(value); ok {
				config.Simulation.Seed = int64(seed)
			}
		case "tick_interval":
			switch v := value.(type) {
			case time.Duration:
				if v >= 0 {
					config.Simulation.TickInterval = v
				}
			case string:
				if d, err := time.ParseDuration(v); err == nil && d >= 0 {
					config.Simulation.TickInterval = d
				}
			}
		case "output_dir":
			if dir, ok := value.(string); ok && dir != "" {
				config.Recording.OutputDir = dir
			}
		case "report_format":
			if format, ok := value.(string); ok && contains(validReportFormats, format) {
				config.Recording.ReportFormat = format
			}
		case "enable_stream":
			if enable, ok := toBool(value); ok {
				config.Stream.Enabled = enable
			}
		case "stream_address":
			if addr, ok := value.(string); ok && addr != "" {
				config.Stream.Address = addr
			}
		case "verbose_logging":
			if verbose, ok := toBool(value); ok {
				config.Logging.VerboseLogging = verbose
			}
		case "log_level":
			if level, ok := value.(string); ok && contains(validLogLevels, level) {
				config.Logging.ConsoleLevel = level
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*SimulationConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	// CLI overrides win over environment variables
	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with environment variables
func MergeWithEnvironment(config *SimulationConfig) {
	if seed := os.Getenv("SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Simulation.Seed = v
		}
	}

	if interval := os.Getenv("SIM_TICK_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d >= 0 {
			config.Simulation.TickInterval = d
		}
	}

	if numCarriers := os.Getenv("NUM_CARRIERS"); numCarriers != "" {
		if count, err := strconv.Atoi(numCarriers); err == nil && count > 0 {
			config.Fleet.CarrierCount = count
		}
	}

	if numMissiles := os.Getenv("NUM_MISSILES"); numMissiles != "" {
		if count, err := strconv.Atoi(numMissiles); err == nil && count >= 0 {
			config.Swarm.MissileCount = count
		}
	}

	if maxSteps := os.Getenv("MAX_STEPS"); maxSteps != "" {
		if steps, err := strconv.Atoi(maxSteps); err == nil && steps > 0 {
			config.Swarm.MaxSteps = steps
		}
	}

	if prob := os.Getenv("DETECTION_PROBABILITY"); prob != "" {
		if p, err := strconv.ParseFloat(prob, 64); err == nil && p >= 0 && p <= 1 {
			config.Sensor.DetectionProbability = p
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		if level := strings.ToLower(logLevel); contains(validLogLevels, level) {
			config.Logging.ConsoleLevel = level
		}
	}

	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		config.Recording.OutputDir = outputDir
	}

	if enable := os.Getenv("ENABLE_STREAM"); enable != "" {
		if v, err := strconv.ParseBool(enable); err == nil {
			config.Stream.Enabled = v
		}
	}

	if addr := os.Getenv("STREAM_ADDRESS"); addr != "" {
		config.Stream.Address = addr
	}

	if verbose := os.Getenv("VERBOSE_LOGGING"); verbose != "" {
		if v, err := strconv.ParseBool(verbose); err == nil {
			config.Logging.VerboseLogging = v
		}
	}
}
