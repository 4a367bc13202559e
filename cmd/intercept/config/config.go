package config

import (
	"fmt"
	"time"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
)

// SimulationConfig holds the complete scenario configuration
type SimulationConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// Carrier fleet and operating area
	Fleet FleetConfig `yaml:"fleet"`

	// Interceptor swarm
	Swarm SwarmConfig `yaml:"swarm"`

	// Chaff and corner reflector lifecycles
	Countermeasures CountermeasuresConfig `yaml:"countermeasures"`

	// Sensor model
	Sensor SensorConfig `yaml:"sensor"`

	// Measurement export and run report
	Recording RecordingConfig `yaml:"recording"`

	// Live frame stream
	Stream StreamConfig `yaml:"stream"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Seed        int64  `yaml:"seed"` // 0 picks a time-based seed at run start
	// TickInterval paces the run loop; 0 runs as fast as possible
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Range is an inclusive numeric range
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is an inclusive integer range
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FleetConfig defines the carriers and the box they move in
type FleetConfig struct {
	CarrierCount int     `yaml:"carrier_count"`
	CarrierSpeed float64 `yaml:"carrier_speed"` // units per tick
	Spawn        Range   `yaml:"spawn"`
	Bounds       Range   `yaml:"bounds"`
}

// Point is a yaml-friendly position
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// SwarmConfig defines the interceptors
type SwarmConfig struct {
	MissileCount int     `yaml:"missile_count"`
	MissileSpeed float64 `yaml:"missile_speed"` // units per tick
	LaunchPoint  Point   `yaml:"launch_point"`
	MaxSteps     int     `yaml:"max_steps"`
}

// CountermeasureClassConfig tunes one countermeasure class
type CountermeasureClassConfig struct {
	MaxOccurrences     int     `yaml:"max_occurrences"`
	Duration           int     `yaml:"duration"` // ticks
	TriggerProbability float64 `yaml:"trigger_probability"`
}

// CountermeasuresConfig defines decoy generation
type CountermeasuresConfig struct {
	Chaff            CountermeasureClassConfig `yaml:"chaff"`
	CornerReflector  CountermeasureClassConfig `yaml:"corner_reflector"`
	DecoysPerCarrier IntRange                  `yaml:"decoys_per_carrier"`
	OffsetExtent     float64                   `yaml:"offset_extent"`
}

// ConfidenceModel is the normal distribution confidences are drawn from
type ConfidenceModel struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

// SensorConfig defines detection and noise
type SensorConfig struct {
	DetectionProbability float64         `yaml:"detection_probability"`
	Categories           []float64       `yaml:"categories"` // angular error magnitudes, degrees
	PrimaryConfidence    ConfidenceModel `yaml:"primary_confidence"`
	DecoyConfidence      ConfidenceModel `yaml:"decoy_confidence"`
}

// RecordingConfig defines what is written when a run ends
type RecordingConfig struct {
	OutputDir          string `yaml:"output_dir"`
	ExportMeasurements bool   `yaml:"export_measurements"`
	ExportCarriers     bool   `yaml:"export_carriers"`
	EnableReport       bool   `yaml:"enable_report"`
	ReportFormat       string `yaml:"report_format"` // "json", "markdown"
}

// StreamConfig defines the websocket frame stream
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig defines console logging
type LoggingConfig struct {
	ConsoleLevel    string `yaml:"console_level"` // "debug", "info", "warn", "error"
	VerboseLogging  bool   `yaml:"verbose_logging"`
	EventBufferSize int    `yaml:"event_buffer_size"`
}

var (
	validReportFormats = []string{"json", "markdown"}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
)

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid
func (c *SimulationConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	if c.Simulation.TickInterval < 0 {
		return fmt.Errorf("tick interval must not be negative")
	}

	if c.Fleet.CarrierCount <= 0 {
		return fmt.Errorf("number of carriers must be positive")
	}

	if c.Swarm.MissileCount < 0 {
		return fmt.Errorf("number of missiles must not be negative")
	}

	if c.Fleet.CarrierSpeed < 0 || c.Swarm.MissileSpeed < 0 {
		return fmt.Errorf("speeds must not be negative")
	}

	if c.Swarm.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive")
	}

	if err := c.FleetGeometry().Validate(); err != nil {
		return err
	}

	if err := c.countermeasureConfig().Validate(); err != nil {
		return err
	}

	if err := c.sensorConfig().Validate(); err != nil {
		return err
	}

	if len(distinct(c.Sensor.Categories)) < core.NumSensors {
		return fmt.Errorf("sensor categories must contain at least %d distinct non-negative values", core.NumSensors)
	}

	if c.Recording.EnableReport && !contains(validReportFormats, c.Recording.ReportFormat) {
		return fmt.Errorf("report format must be one of %v", validReportFormats)
	}

	if c.Stream.Enabled && c.Stream.Address == "" {
		return fmt.Errorf("stream address is required when streaming is enabled")
	}

	if c.Logging.ConsoleLevel != "" && !contains(validLogLevels, c.Logging.ConsoleLevel) {
		return fmt.Errorf("console level must be one of %v", validLogLevels)
	}

	return nil
}

func distinct(values []float64) map[float64]struct{} {
	out := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if v >= 0 {
			out[v] = struct{}{}
		}
	}
	return out
}

// FleetGeometry converts the fleet and decoy settings to the core fleet config
func (c *SimulationConfig) FleetGeometry() core.FleetConfig {
	return core.FleetConfig{
		SpawnMin:       c.Fleet.Spawn.Min,
		SpawnMax:       c.Fleet.Spawn.Max,
		BoundMin:       c.Fleet.Bounds.Min,
		BoundMax:       c.Fleet.Bounds.Max,
		MinDecoys:      c.Countermeasures.DecoysPerCarrier.Min,
		MaxDecoys:      c.Countermeasures.DecoysPerCarrier.Max,
		DecoyOffsetMax: c.Countermeasures.OffsetExtent,
	}
}

func (c *SimulationConfig) countermeasureConfig() controllers.CountermeasureConfig {
	convert := func(cc CountermeasureClassConfig) controllers.CountermeasureSettings {
		return controllers.CountermeasureSettings{
			MaxOccurrences:     cc.MaxOccurrences,
			Duration:           cc.Duration,
			TriggerProbability: cc.TriggerProbability,
		}
	}
	return controllers.CountermeasureConfig{
		Chaff:           convert(c.Countermeasures.Chaff),
		CornerReflector: convert(c.Countermeasures.CornerReflector),
	}
}

func (c *SimulationConfig) sensorConfig() core.SensorConfig {
	return core.SensorConfig{
		DetectionProbability:  c.Sensor.DetectionProbability,
		PrimaryConfidenceMean: c.Sensor.PrimaryConfidence.Mean,
		PrimaryConfidenceStd:  c.Sensor.PrimaryConfidence.StdDev,
		DecoyConfidenceMean:   c.Sensor.DecoyConfidence.Mean,
		DecoyConfidenceStd:    c.Sensor.DecoyConfidence.StdDev,
	}
}

// EngineConfig builds the engagement controller config for the given seed
func (c *SimulationConfig) EngineConfig(seed int64) controllers.EngineConfig {
	return controllers.EngineConfig{
		CarrierCount:                  c.Fleet.CarrierCount,
		MissileCount:                  c.Swarm.MissileCount,
		CarrierSpeed:                  c.Fleet.CarrierSpeed,
		MissileSpeed:                  c.Swarm.MissileSpeed,
		MaxSteps:                      c.Swarm.MaxSteps,
		ChaffMaxOccurrences:           c.Countermeasures.Chaff.MaxOccurrences,
		CornerReflectorMaxOccurrences: c.Countermeasures.CornerReflector.MaxOccurrences,
		Seed:                          seed,
		LaunchPoint:                   core.Vector3D{X: c.Swarm.LaunchPoint.X, Y: c.Swarm.LaunchPoint.Y, Z: c.Swarm.LaunchPoint.Z},
		SensorCategories:              append([]float64(nil), c.Sensor.Categories...),
		Fleet:                         c.FleetGeometry(),
		Sensor:                        c.sensorConfig(),
		Countermeasures:               c.countermeasureConfig(),
	}
}

// String returns a human-readable representation of the configuration
func (c *SimulationConfig) String() string {
	return fmt.Sprintf(`Simulation Configuration:
  Name: %s
  Description: %s
  Seed: %d
  Tick Interval: %v

Fleet:
  Carriers: %d
  Carrier Speed: %.3f
  Spawn Area: [%.1f, %.1f]
  Bounds: [%.1f, %.1f]

Swarm:
  Missiles: %d
  Missile Speed: %.3f
  Launch Point: (%.1f, %.1f, %.1f)
  Max Steps: %d

Countermeasures:
  Chaff: max %d, duration %d, p=%.3f
  Corner Reflector: max %d, duration %d, p=%.3f
  Decoys Per Carrier: %d-%d (offset ±%.2f)

Sensor:
  Detection Probability: %.2f
  Error Categories (deg): %v
  Primary Confidence: N(%.2f, %.2f)
  Decoy Confidence: N(%.2f, %.2f)

Recording:
  Output Dir: %s
  Measurements CSV: %t
  Carriers CSV: %t
  Report: %t (%s)

Stream:
  Enabled: %t
  Address: %s

Logging:
  Console Level: %s`,
		c.Simulation.Name,
		c.Simulation.Description,
		c.Simulation.Seed,
		c.Simulation.TickInterval,
		c.Fleet.CarrierCount,
		c.Fleet.CarrierSpeed,
		c.Fleet.Spawn.Min, c.Fleet.Spawn.Max,
		c.Fleet.Bounds.Min, c.Fleet.Bounds.Max,
		c.Swarm.MissileCount,
		c.Swarm.MissileSpeed,
		c.Swarm.LaunchPoint.X, c.Swarm.LaunchPoint.Y, c.Swarm.LaunchPoint.Z,
		c.Swarm.MaxSteps,
		c.Countermeasures.Chaff.MaxOccurrences, c.Countermeasures.Chaff.Duration, c.Countermeasures.Chaff.TriggerProbability,
		c.Countermeasures.CornerReflector.MaxOccurrences, c.Countermeasures.CornerReflector.Duration, c.Countermeasures.CornerReflector.TriggerProbability,
		c.Countermeasures.DecoysPerCarrier.Min, c.Countermeasures.DecoysPerCarrier.Max, c.Countermeasures.OffsetExtent,
		c.Sensor.DetectionProbability,
		c.Sensor.Categories,
		c.Sensor.PrimaryConfidence.Mean, c.Sensor.PrimaryConfidence.StdDev,
		c.Sensor.DecoyConfidence.Mean, c.Sensor.DecoyConfidence.StdDev,
		c.Recording.OutputDir,
		c.Recording.ExportMeasurements,
		c.Recording.ExportCarriers,
		c.Recording.EnableReport, c.Recording.ReportFormat,
		c.Stream.Enabled,
		c.Stream.Address,
		c.Logging.ConsoleLevel,
	)
}

// GetDefaultConfig returns the standard five-carrier, five-missile scenario
func GetDefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Simulation: SimulationSettings{
			Name:         "intercept",
			Description:  "Interceptor vs Carrier Engagement with Chaff and Corner Reflectors",
			Seed:         0,
			TickInterval: 0,
		},

		Fleet: FleetConfig{
			CarrierCount: 5,
			CarrierSpeed: 0.05,
			Spawn:        Range{Min: 5, Max: 35},
			Bounds:       Range{Min: 0, Max: 40},
		},

		Swarm: SwarmConfig{
			MissileCount: 5,
			MissileSpeed: 0.5,
			LaunchPoint:  Point{X: 0, Y: 0, Z: 15},
			MaxSteps:     500,
		},

		Countermeasures: CountermeasuresConfig{
			Chaff: CountermeasureClassConfig{
				MaxOccurrences:     2,
				Duration:           50,
				TriggerProbability: 0.01,
			},
			CornerReflector: CountermeasureClassConfig{
				MaxOccurrences:     2,
				Duration:           100,
				TriggerProbability: 0.01,
			},
			DecoysPerCarrier: IntRange{Min: 1, Max: 3},
			OffsetExtent:     1,
		},

		Sensor: SensorConfig{
			DetectionProbability: 0.9,
			Categories:           []float64{0.1, 0.2, 0.3, 0.4, 0.6},
			PrimaryConfidence:    ConfidenceModel{Mean: 0.8, StdDev: 0.1},
			DecoyConfidence:      ConfidenceModel{Mean: 0.3, StdDev: 0.2},
		},

		Recording: RecordingConfig{
			OutputDir:          "./output/",
			ExportMeasurements: true,
			ExportCarriers:     true,
			EnableReport:       true,
			ReportFormat:       "markdown",
		},

		Stream: StreamConfig{
			Enabled: false,
			Address: "localhost:8089",
		},

		Logging: LoggingConfig{
			ConsoleLevel:    "info",
			VerboseLogging:  false,
			EventBufferSize: 1000,
		},
	}
}
