package core

import (
	"fmt"
	"math"
	"math/rand"
)

// SensorConfig controls detection and confidence generation
type SensorConfig struct {
	DetectionProbability  float64
	PrimaryConfidenceMean float64
	PrimaryConfidenceStd  float64
	DecoyConfidenceMean   float64
	DecoyConfidenceStd    float64
}

// DefaultSensorConfig returns the standard detection and confidence parameters
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		DetectionProbability:  0.9,
		PrimaryConfidenceMean: 0.8,
		PrimaryConfidenceStd:  0.1,
		DecoyConfidenceMean:   0.3,
		DecoyConfidenceStd:    0.2,
	}
}

// Validate checks probabilities and spreads
func (c SensorConfig) Validate() error {
	if c.DetectionProbability < 0 || c.DetectionProbability > 1 {
		return fmt.Errorf("detection probability must be between 0.0 and 1.0")
	}
	if c.PrimaryConfidenceStd < 0 || c.DecoyConfidenceStd < 0 {
		return fmt.Errorf("confidence standard deviations must be non-negative")
	}
	return nil
}

// SensorEngine turns true geometry into noisy per-sensor bearing measurements
type SensorEngine struct {
	config SensorConfig
	rng    *rand.Rand
}

// NewSensorEngine creates a sensor engine drawing from rng
func NewSensorEngine(config SensorConfig, rng *rand.Rand) (*SensorEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sensor config: %w", err)
	}
	return &SensorEngine{config: config, rng: rng}, nil
}

// BuildTargets assembles the unified target list: carriers first, then chaff, then reflectors
func BuildTargets(carriers, chaff, reflectors []Vector3D) []Target {
	targets := make([]Target, 0, len(carriers)+len(chaff)+len(reflectors))
	for _, p := range carriers {
		targets = append(targets, Target{Position: p, Class: TargetClassPrimary})
	}
	for _, p := range chaff {
		targets = append(targets, Target{Position: p, Class: TargetClassDecoy})
	}
	for _, p := range reflectors {
		targets = append(targets, Target{Position: p, Class: TargetClassDecoy})
	}
	return targets
}

// Tick measures every target with every sensor of every missile. It always emits
// len(missiles)*NumSensors records; targets past MaxTargets are ignored.
func (e *SensorEngine) Tick(timeStep int, missiles []Missile, targets []Target) []MeasurementRecord {
	if len(targets) > MaxTargets {
		targets = targets[:MaxTargets]
	}

	records := make([]MeasurementRecord, 0, len(missiles)*NumSensors)
	for _, m := range missiles {
		for sensorID, errDeg := range m.SensorErrors {
			rec := MeasurementRecord{
				TimeStep:  timeStep,
				MissileID: m.ID,
				SensorID:  sensorID,
			}
			for i, t := range targets {
				if e.rng.Float64() >= e.config.DetectionProbability {
					continue
				}
				rec.Slots[i] = e.Measure(m.Position, t, errDeg)
			}
			records = append(records, rec)
		}
	}
	return records
}

// Measure produces one detected slot for target as seen from observer by a sensor with
// angular error magnitude errDeg (degrees)
func (e *SensorEngine) Measure(observer Vector3D, target Target, errDeg float64) TargetSlot {
	truth := BearingTo(observer, target.Position)

	// uniform direction inside a disk of radius errDeg in angle space
	rho := e.rng.Float64() * errDeg
	phi := e.rng.Float64() * 2 * math.Pi
	azErr := deg2rad(rho * math.Cos(phi))
	elErr := deg2rad(rho * math.Sin(phi))

	measured := Project(observer, truth.Range, truth.Azimuth+azErr, truth.Elevation+elErr)
	ellipse := ErrorEllipse(truth, deg2rad(errDeg))

	return TargetSlot{
		X:          Some(measured.X),
		Y:          Some(measured.Y),
		Z:          Some(measured.Z),
		MajorAxis:  Some(ellipse.MajorAxis),
		MinorAxis:  Some(ellipse.MinorAxis),
		AngleRad:   Some(ellipse.Angle),
		Scatter:    Some(errDeg),
		Confidence: Some(e.confidence(target.Class)),
		Class:      target.Class,
	}
}

func (e *SensorEngine) confidence(class TargetClass) float64 {
	mean, std := e.config.DecoyConfidenceMean, e.config.DecoyConfidenceStd
	if class == TargetClassPrimary {
		mean, std = e.config.PrimaryConfidenceMean, e.config.PrimaryConfidenceStd
	}
	c := mean + std*e.rng.NormFloat64()
	return math.Max(0.0, math.Min(1.0, c))
}
