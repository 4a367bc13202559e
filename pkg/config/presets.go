package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const presetsFile = "presets.yaml"

// Preset is a named set of simulation parameters that skips prompting
type Preset struct {
	Name        string                 `yaml:"name"`
	Simulation  string                 `yaml:"simulation"`
	Description string                 `yaml:"description,omitempty"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

// Config holds the saved presets
type Config struct {
	Presets []Preset `yaml:"presets"`
}

// Dir returns the per-user configuration directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".interceptor-sim"), nil
}

// LoadPresets loads presets from the default location
func LoadPresets() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadPresetsFromFile(filepath.Join(dir, presetsFile))
}

// LoadPresetsFromFile loads presets from a specific file
func LoadPresetsFromFile(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse presets file: %w", err)
	}

	return &config, nil
}

// SavePresets saves presets to the default location
func SavePresets(config *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return SavePresetsToFile(config, filepath.Join(dir, presetsFile))
}

// SavePresetsToFile saves presets to a specific file
func SavePresetsToFile(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}

	return nil
}

// Find returns the preset with the given name
func (c *Config) Find(name string) (*Preset, bool) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], true
		}
	}
	return nil, false
}

// Add appends a preset; names are unique
func (c *Config) Add(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if _, exists := c.Find(preset.Name); exists {
		return fmt.Errorf("preset %s already exists", preset.Name)
	}
	c.Presets = append(c.Presets, preset)
	return nil
}

// Remove deletes the named preset and reports whether it existed
func (c *Config) Remove(name string) bool {
	for i, p := range c.Presets {
		if p.Name == name {
			c.Presets = append(c.Presets[:i], c.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the preset names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// getDefaultConfig returns the built-in presets
func getDefaultConfig() *Config {
	return &Config{
		Presets: []Preset{
			{
				Name:        "quick",
				Simulation:  "Interceptor Decoy Engagement",
				Description: "Two carriers, one missile, no countermeasures",
				Parameters: map[string]interface{}{
					"num_carriers":                     2,
					"num_missiles":                     1,
					"max_steps":                        200,
					"chaff_max_occurrences":            0,
					"corner_reflector_max_occurrences": 0,
					"seed":                             1,
				},
			},
			{
				Name:        "saturation",
				Simulation:  "Interceptor Decoy Engagement",
				Description: "Large fleet with heavy decoy use",
				Parameters: map[string]interface{}{
					"num_carriers":                     10,
					"num_missiles":                     20,
					"chaff_max_occurrences":            4,
					"corner_reflector_max_occurrences": 4,
				},
			},
		},
	}
}
