package controllers

import (
	"fmt"
	"math/rand"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
)

// CountermeasureClass identifies an independent countermeasure state machine
type CountermeasureClass string

const (
	CountermeasureChaff           CountermeasureClass = "chaff"
	CountermeasureCornerReflector CountermeasureClass = "corner_reflector"
)

// CountermeasureStatus is the lifecycle state of a countermeasure class
type CountermeasureStatus string

const (
	CountermeasureInactive CountermeasureStatus = "inactive"
	CountermeasureActive   CountermeasureStatus = "active"
)

// ReflectorVariant tells whether corner reflectors stay put or follow their carrier
type ReflectorVariant string

const (
	ReflectorFixed  ReflectorVariant = "fixed"
	ReflectorMoving ReflectorVariant = "moving"
)

// CountermeasureSettings tunes one countermeasure class
type CountermeasureSettings struct {
	MaxOccurrences     int
	Duration           int     // ticks an instance stays active, spawn tick included
	TriggerProbability float64 // per-tick chance of spawning while inactive
}

// CountermeasureConfig holds the settings of both classes
type CountermeasureConfig struct {
	Chaff           CountermeasureSettings
	CornerReflector CountermeasureSettings
}

// DefaultCountermeasureConfig returns the standard durations and trigger rate
func DefaultCountermeasureConfig() CountermeasureConfig {
	return CountermeasureConfig{
		Chaff:           CountermeasureSettings{MaxOccurrences: 2, Duration: 50, TriggerProbability: 0.01},
		CornerReflector: CountermeasureSettings{MaxOccurrences: 2, Duration: 100, TriggerProbability: 0.01},
	}
}

// Validate checks both classes
func (c CountermeasureConfig) Validate() error {
	for class, s := range map[CountermeasureClass]CountermeasureSettings{
		CountermeasureChaff:           c.Chaff,
		CountermeasureCornerReflector: c.CornerReflector,
	} {
		if s.MaxOccurrences < 0 {
			return fmt.Errorf("%s max occurrences must be non-negative", class)
		}
		if s.Duration < 1 {
			return fmt.Errorf("%s duration must be at least 1 tick", class)
		}
		if s.TriggerProbability < 0 || s.TriggerProbability > 1 {
			return fmt.Errorf("%s trigger probability must be between 0.0 and 1.0", class)
		}
	}
	return nil
}

// Transition records a countermeasure state change during one update
type Transition struct {
	Class    CountermeasureClass  `json:"class"`
	From     CountermeasureStatus `json:"from"`
	To       CountermeasureStatus `json:"to"`
	Variant  ReflectorVariant     `json:"variant,omitempty"`
	Decoys   int                  `json:"decoys"`
	Occurred int                  `json:"occurrence"`
}

// CountermeasureState is a read-only view of one class
type CountermeasureState struct {
	Class           CountermeasureClass  `json:"class"`
	Status          CountermeasureStatus `json:"status"`
	Variant         ReflectorVariant     `json:"variant,omitempty"`
	Remaining       int                  `json:"remaining"`
	OccurrencesUsed int                  `json:"occurrences_used"`
	MaxOccurrences  int                  `json:"max_occurrences"`
}

type countermeasure struct {
	class     CountermeasureClass
	settings  CountermeasureSettings
	status    CountermeasureStatus
	remaining int
	used      int
	variant   ReflectorVariant
	geometry  core.DecoyGeometry
	positions []core.Vector3D
}

func (c *countermeasure) state() CountermeasureState {
	return CountermeasureState{
		Class:           c.class,
		Status:          c.status,
		Variant:         c.variant,
		Remaining:       c.remaining,
		OccurrencesUsed: c.used,
		MaxOccurrences:  c.settings.MaxOccurrences,
	}
}

func (c *countermeasure) clear() {
	c.status = CountermeasureInactive
	c.remaining = 0
	c.variant = ""
	c.geometry = nil
	c.positions = nil
}

// CountermeasureController runs the chaff and corner reflector lifecycles. Each class has at
// most one live instance and never spawns more than its occurrence budget.
type CountermeasureController struct {
	chaff     *countermeasure
	reflector *countermeasure
	rng       *rand.Rand
}

// NewCountermeasureController creates a controller with both classes inactive
func NewCountermeasureController(config CountermeasureConfig, rng *rand.Rand) (*CountermeasureController, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid countermeasure config: %w", err)
	}
	return &CountermeasureController{
		chaff: &countermeasure{
			class:    CountermeasureChaff,
			settings: config.Chaff,
			status:   CountermeasureInactive,
		},
		reflector: &countermeasure{
			class:    CountermeasureCornerReflector,
			settings: config.CornerReflector,
			status:   CountermeasureInactive,
		},
		rng: rng,
	}, nil
}

// Update advances both state machines by one tick against the fleet's current positions
// and returns the transitions that happened
func (cc *CountermeasureController) Update(fleet *core.CarrierFleet) []Transition {
	var transitions []Transition
	carriers := fleet.Positions()

	if t, ok := cc.advance(cc.chaff, carriers, func() (core.DecoyGeometry, ReflectorVariant) {
		return fleet.SpawnChaff(), ""
	}); ok {
		transitions = append(transitions, t)
	}

	if t, ok := cc.advance(cc.reflector, carriers, func() (core.DecoyGeometry, ReflectorVariant) {
		if cc.rng.Intn(2) == 0 {
			return fleet.SpawnFixedCornerReflectors(), ReflectorFixed
		}
		return fleet.SpawnMovingCornerReflectors(), ReflectorMoving
	}); ok {
		transitions = append(transitions, t)
	}

	return transitions
}

func (cc *CountermeasureController) advance(
	c *countermeasure,
	carriers []core.Vector3D,
	spawn func() (core.DecoyGeometry, ReflectorVariant),
) (Transition, bool) {
	switch c.status {
	case CountermeasureActive:
		c.remaining--
		if c.remaining <= 0 {
			t := Transition{
				Class:    c.class,
				From:     CountermeasureActive,
				To:       CountermeasureInactive,
				Variant:  c.variant,
				Decoys:   len(c.positions),
				Occurred: c.used,
			}
			c.clear()
			return t, true
		}
		c.positions = c.geometry.Resolve(carriers)
		return Transition{}, false

	default:
		if c.used >= c.settings.MaxOccurrences {
			return Transition{}, false
		}
		if cc.rng.Float64() >= c.settings.TriggerProbability {
			return Transition{}, false
		}
		c.geometry, c.variant = spawn()
		c.positions = c.geometry.Resolve(carriers)
		c.status = CountermeasureActive
		c.remaining = c.settings.Duration
		c.used++
		return Transition{
			Class:    c.class,
			From:     CountermeasureInactive,
			To:       CountermeasureActive,
			Variant:  c.variant,
			Decoys:   len(c.positions),
			Occurred: c.used,
		}, true
	}
}

// ChaffPositions returns the live chaff decoys (empty when inactive)
func (cc *CountermeasureController) ChaffPositions() []core.Vector3D {
	return append([]core.Vector3D(nil), cc.chaff.positions...)
}

// CornerReflectorPositions returns the live corner reflectors (empty when inactive)
func (cc *CountermeasureController) CornerReflectorPositions() []core.Vector3D {
	return append([]core.Vector3D(nil), cc.reflector.positions...)
}

// States returns a view of both classes, chaff first
func (cc *CountermeasureController) States() []CountermeasureState {
	return []CountermeasureState{cc.chaff.state(), cc.reflector.state()}
}

// State returns the view of a single class
func (cc *CountermeasureController) State(class CountermeasureClass) CountermeasureState {
	return cc.byClass(class).state()
}

// Geometry returns the live instance's geometry, nil when the class is inactive
func (cc *CountermeasureController) Geometry(class CountermeasureClass) core.DecoyGeometry {
	return cc.byClass(class).geometry
}

func (cc *CountermeasureController) byClass(class CountermeasureClass) *countermeasure {
	if class == CountermeasureCornerReflector {
		return cc.reflector
	}
	return cc.chaff
}
