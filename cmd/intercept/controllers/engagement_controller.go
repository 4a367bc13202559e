package controllers

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
)

// ErrNotInitialized is returned by operations that need a prior Init
var ErrNotInitialized = errors.New("engagement controller not initialized")

// TerminationReason explains why a run stopped
type TerminationReason string

const (
	TerminationNone       TerminationReason = ""
	TerminationAllLanded  TerminationReason = "all_missiles_landed"
	TerminationMaxSteps   TerminationReason = "max_steps_reached"
	TerminationNoMissiles TerminationReason = "no_missiles"
)

// EngineConfig is everything needed to build an engagement
type EngineConfig struct {
	CarrierCount                  int
	MissileCount                  int
	CarrierSpeed                  float64
	MissileSpeed                  float64
	MaxSteps                      int
	ChaffMaxOccurrences           int
	CornerReflectorMaxOccurrences int

	Seed             int64
	LaunchPoint      core.Vector3D
	SensorCategories []float64
	Fleet            core.FleetConfig
	Sensor           core.SensorConfig

	// Countermeasures supplies durations and trigger probabilities. Its MaxOccurrences
	// fields are replaced by ChaffMaxOccurrences and CornerReflectorMaxOccurrences.
	Countermeasures CountermeasureConfig
}

// DefaultEngineConfig returns a five-on-five engagement
func DefaultEngineConfig() EngineConfig {
	cm := DefaultCountermeasureConfig()
	return EngineConfig{
		CarrierCount:                  5,
		MissileCount:                  5,
		CarrierSpeed:                  0.05,
		MissileSpeed:                  0.5,
		MaxSteps:                      500,
		ChaffMaxOccurrences:           cm.Chaff.MaxOccurrences,
		CornerReflectorMaxOccurrences: cm.CornerReflector.MaxOccurrences,
		Seed:                          1,
		LaunchPoint:                   core.DefaultLaunchPoint,
		SensorCategories:              append([]float64(nil), core.DefaultSensorCategories...),
		Fleet:                         core.DefaultFleetConfig(),
		Sensor:                        core.DefaultSensorConfig(),
		Countermeasures:               cm,
	}
}

func (c EngineConfig) countermeasureConfig() CountermeasureConfig {
	cm := c.Countermeasures
	cm.Chaff.MaxOccurrences = c.ChaffMaxOccurrences
	cm.CornerReflector.MaxOccurrences = c.CornerReflectorMaxOccurrences
	return cm
}

// Validate checks counts and speeds; component configs validate themselves on construction
func (c EngineConfig) Validate() error {
	if c.CarrierCount < 1 {
		return fmt.Errorf("carrier count must be at least 1")
	}
	if c.MissileCount < 0 {
		return fmt.Errorf("missile count must be non-negative")
	}
	if c.CarrierSpeed < 0 || c.MissileSpeed < 0 {
		return fmt.Errorf("speeds must be non-negative")
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be at least 1")
	}
	if c.ChaffMaxOccurrences < 0 || c.CornerReflectorMaxOccurrences < 0 {
		return fmt.Errorf("max occurrences must be non-negative")
	}
	return nil
}

// TickFrame is everything produced by one tick, handed to every sink
type TickFrame struct {
	TimeStep         int                      `json:"time_step"`
	Carriers         []core.Vector3D          `json:"carriers"`
	Missiles         []core.Vector3D          `json:"missiles"`
	Chaff            []core.Vector3D          `json:"chaff"`
	CornerReflectors []core.Vector3D          `json:"corner_reflectors"`
	Countermeasures  []CountermeasureState    `json:"countermeasures"`
	Transitions      []Transition             `json:"transitions,omitempty"`
	Targets          []core.Target            `json:"-"`
	Records          []core.MeasurementRecord `json:"-"`
	Terminated       bool                     `json:"terminated"`
	Reason           TerminationReason        `json:"reason,omitempty"`
}

// Sink consumes tick frames as they are produced
type Sink interface {
	RecordTick(frame TickFrame)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(frame TickFrame)

func (f SinkFunc) RecordTick(frame TickFrame) { f(frame) }

// Snapshot is the published world state between ticks
type Snapshot struct {
	TimeStep         int                   `json:"time_step"`
	Carriers         []core.Vector3D       `json:"carriers"`
	Missiles         []core.Vector3D       `json:"missiles"`
	Chaff            []core.Vector3D       `json:"chaff"`
	CornerReflectors []core.Vector3D       `json:"corner_reflectors"`
	Countermeasures  []CountermeasureState `json:"countermeasures"`
	Terminated       bool                  `json:"terminated"`
	Reason           TerminationReason     `json:"reason,omitempty"`
}

// EngagementController drives one engagement tick by tick:
// fleet step, countermeasure update, missile step, sensor tick.
type EngagementController struct {
	config EngineConfig

	fleet           *core.CarrierFleet
	swarm           *core.MissileSwarm
	countermeasures *CountermeasureController
	sensors         *core.SensorEngine

	tick       int
	targets    []core.Target
	terminated bool
	reason     TerminationReason

	sinks []Sink
	log   logger.Logger
	mu    sync.RWMutex
}

// NewEngagementController creates an uninitialized controller
func NewEngagementController(sinks ...Sink) *EngagementController {
	return &EngagementController{
		sinks: sinks,
		log:   logger.WithPrefix("engagement"),
	}
}

// AddSink registers another consumer of tick frames
func (ec *EngagementController) AddSink(sink Sink) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.sinks = append(ec.sinks, sink)
}

// Init builds all components from config. All randomness derives from config.Seed.
func (ec *EngagementController) Init(config EngineConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	rng := rand.New(rand.NewSource(config.Seed))

	fleet, err := core.NewCarrierFleet(config.CarrierCount, config.CarrierSpeed, config.Fleet, rng)
	if err != nil {
		return fmt.Errorf("failed to create carrier fleet: %w", err)
	}
	swarm, err := core.NewMissileSwarm(config.MissileCount, config.LaunchPoint, config.SensorCategories, rng)
	if err != nil {
		return fmt.Errorf("failed to create missile swarm: %w", err)
	}

	return ec.initWith(config, fleet, swarm, rng)
}

// InitWith builds the controller around an existing fleet and swarm. The remaining
// components draw from rng.
func (ec *EngagementController) InitWith(config EngineConfig, fleet *core.CarrierFleet, swarm *core.MissileSwarm, rng *rand.Rand) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	return ec.initWith(config, fleet, swarm, rng)
}

func (ec *EngagementController) initWith(config EngineConfig, fleet *core.CarrierFleet, swarm *core.MissileSwarm, rng *rand.Rand) error {
	countermeasures, err := NewCountermeasureController(config.countermeasureConfig(), rng)
	if err != nil {
		return err
	}
	sensors, err := core.NewSensorEngine(config.Sensor, rng)
	if err != nil {
		return err
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.config = config
	ec.fleet = fleet
	ec.swarm = swarm
	ec.countermeasures = countermeasures
	ec.sensors = sensors
	ec.tick = 0
	ec.targets = nil
	ec.terminated = false
	ec.reason = TerminationNone

	ec.log.Debugf("Initialized %d carriers, %d missiles, max %d steps (seed %d)",
		fleet.Count(), swarm.Count(), config.MaxSteps, config.Seed)
	return nil
}

// Reset rebuilds the engagement from the last Init config, replaying the same seed
func (ec *EngagementController) Reset() error {
	ec.mu.RLock()
	initialized := ec.fleet != nil
	config := ec.config
	ec.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	return ec.Init(config)
}

// Step runs one tick and reports whether the run has terminated. Calling Step on a
// terminated or uninitialized controller does nothing and returns true.
func (ec *EngagementController) Step() bool {
	ec.mu.Lock()

	if ec.fleet == nil || ec.terminated {
		ec.mu.Unlock()
		return true
	}

	timeStep := ec.tick

	ec.fleet.Step()
	transitions := ec.countermeasures.Update(ec.fleet)
	carriers := ec.fleet.Positions()
	ec.swarm.Step(ec.config.MissileSpeed, carriers)

	chaff := ec.countermeasures.ChaffPositions()
	reflectors := ec.countermeasures.CornerReflectorPositions()
	ec.targets = core.BuildTargets(carriers, chaff, reflectors)
	records := ec.sensors.Tick(timeStep, ec.swarm.Missiles(), ec.targets)

	ec.tick++
	switch {
	case ec.swarm.Count() == 0:
		ec.reason = TerminationNoMissiles
	case ec.swarm.AllLanded():
		ec.reason = TerminationAllLanded
	case ec.tick >= ec.config.MaxSteps:
		ec.reason = TerminationMaxSteps
	}
	ec.terminated = ec.reason != TerminationNone

	for _, t := range transitions {
		ec.log.WithField("tick", timeStep).Debugf("%s %s -> %s (%d decoys)", t.Class, t.From, t.To, t.Decoys)
	}

	frame := TickFrame{
		TimeStep:         timeStep,
		Carriers:         carriers,
		Missiles:         ec.swarm.Positions(),
		Chaff:            chaff,
		CornerReflectors: reflectors,
		Countermeasures:  ec.countermeasures.States(),
		Transitions:      transitions,
		Targets:          append([]core.Target(nil), ec.targets...),
		Records:          records,
		Terminated:       ec.terminated,
		Reason:           ec.reason,
	}
	sinks := append([]Sink(nil), ec.sinks...)
	terminated := ec.terminated
	ec.mu.Unlock()

	for _, s := range sinks {
		s.RecordTick(frame)
	}
	return terminated
}

// Tick returns the number of completed ticks
func (ec *EngagementController) Tick() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.tick
}

// Terminated reports whether the run has stopped and why
func (ec *EngagementController) Terminated() (bool, TerminationReason) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.terminated, ec.reason
}

// Targets returns the unified target list of the last tick
func (ec *EngagementController) Targets() []core.Target {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return append([]core.Target(nil), ec.targets...)
}

// Config returns the config of the current engagement
func (ec *EngagementController) Config() EngineConfig {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.config
}

// Missiles returns the current missiles with their sensor suites
func (ec *EngagementController) Missiles() []core.Missile {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if ec.swarm == nil {
		return nil
	}
	return ec.swarm.Missiles()
}

// MissDistances returns each missile's distance to its assigned carrier
func (ec *EngagementController) MissDistances() []float64 {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if ec.swarm == nil {
		return nil
	}
	return ec.swarm.MissDistances(ec.fleet.Positions())
}

// Snapshot returns the current world state
func (ec *EngagementController) Snapshot() (Snapshot, error) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	if ec.fleet == nil {
		return Snapshot{}, ErrNotInitialized
	}
	return Snapshot{
		TimeStep:         ec.tick,
		Carriers:         ec.fleet.Positions(),
		Missiles:         ec.swarm.Positions(),
		Chaff:            ec.countermeasures.ChaffPositions(),
		CornerReflectors: ec.countermeasures.CornerReflectorPositions(),
		Countermeasures:  ec.countermeasures.States(),
		Terminated:       ec.terminated,
		Reason:           ec.reason,
	}, nil
}
