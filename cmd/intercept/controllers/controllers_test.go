package controllers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
)

func alwaysTrigger(maxOccurrences int) CountermeasureConfig {
	return CountermeasureConfig{
		Chaff:           CountermeasureSettings{MaxOccurrences: maxOccurrences, Duration: 50, TriggerProbability: 1},
		CornerReflector: CountermeasureSettings{MaxOccurrences: maxOccurrences, Duration: 100, TriggerProbability: 1},
	}
}

func newFleet(t *testing.T, rng *rand.Rand) *core.CarrierFleet {
	t.Helper()
	fleet, err := core.NewCarrierFleet(3, 0.2, core.DefaultFleetConfig(), rng)
	require.NoError(t, err)
	return fleet
}

func TestCountermeasureActiveForExactlyDuration(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fleet := newFleet(t, rng)
	cc, err := NewCountermeasureController(alwaysTrigger(1), rng)
	require.NoError(t, err)

	chaffTicks, reflectorTicks := 0, 0
	for tick := 0; tick < 400; tick++ {
		fleet.Step()
		cc.Update(fleet)
		if cc.State(CountermeasureChaff).Status == CountermeasureActive {
			chaffTicks++
			assert.NotEmpty(t, cc.ChaffPositions())
		} else {
			assert.Empty(t, cc.ChaffPositions())
		}
		if cc.State(CountermeasureCornerReflector).Status == CountermeasureActive {
			reflectorTicks++
			assert.NotEmpty(t, cc.CornerReflectorPositions())
		} else {
			assert.Empty(t, cc.CornerReflectorPositions())
		}
	}

	assert.Equal(t, 50, chaffTicks)
	assert.Equal(t, 100, reflectorTicks)
}

func TestCountermeasureTransitions(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	fleet := newFleet(t, rng)
	cc, err := NewCountermeasureController(alwaysTrigger(2), rng)
	require.NoError(t, err)

	var chaff []Transition
	for tick := 0; tick < 300; tick++ {
		for _, tr := range cc.Update(fleet) {
			if tr.Class == CountermeasureChaff {
				chaff = append(chaff, tr)
			}
		}
	}

	require.Len(t, chaff, 4)
	assert.Equal(t, CountermeasureActive, chaff[0].To)
	assert.Equal(t, CountermeasureInactive, chaff[1].To)
	assert.Equal(t, CountermeasureActive, chaff[2].To)
	assert.Equal(t, 2, chaff[2].Occurred)
	assert.Equal(t, CountermeasureInactive, chaff[3].To)
}

func TestCountermeasureBudgetNeverExceeded(t *testing.T) {
	for _, budget := range []int{0, 1, 3} {
		rng := rand.New(rand.NewSource(int64(budget) + 11))
		fleet := newFleet(t, rng)
		cc, err := NewCountermeasureController(alwaysTrigger(budget), rng)
		require.NoError(t, err)

		activations := 0
		for tick := 0; tick < 1000; tick++ {
			fleet.Step()
			for _, tr := range cc.Update(fleet) {
				if tr.To == CountermeasureActive {
					activations++
				}
			}
			for _, s := range cc.States() {
				assert.LessOrEqual(t, s.OccurrencesUsed, budget)
			}
		}
		assert.Equal(t, 2*budget, activations)
	}
}

func TestCountermeasureDefaultRateRespectsBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	fleet := newFleet(t, rng)
	cc, err := NewCountermeasureController(DefaultCountermeasureConfig(), rng)
	require.NoError(t, err)

	for tick := 0; tick < 5000; tick++ {
		fleet.Step()
		cc.Update(fleet)
	}
	for _, s := range cc.States() {
		assert.LessOrEqual(t, s.OccurrencesUsed, s.MaxOccurrences)
	}
}

func TestMovingReflectorsFollowCarriers(t *testing.T) {
	sawMoving := false
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		fleet := newFleet(t, rng)
		cc, err := NewCountermeasureController(alwaysTrigger(1), rng)
		require.NoError(t, err)

		fleet.Step()
		cc.Update(fleet)
		if cc.State(CountermeasureCornerReflector).Variant != ReflectorMoving {
			continue
		}
		sawMoving = true

		geometry, ok := cc.Geometry(CountermeasureCornerReflector).(core.MovingGeometry)
		require.True(t, ok)

		for tick := 0; tick < 60; tick++ {
			fleet.Step()
			cc.Update(fleet)
			carriers := fleet.Positions()
			positions := cc.CornerReflectorPositions()
			require.Len(t, positions, len(geometry.Anchors))
			for i, a := range geometry.Anchors {
				assert.Equal(t, carriers[a.CarrierIndex].Add(a.Offset), positions[i])
			}
		}
	}
	assert.True(t, sawMoving, "no seed produced moving reflectors")
}

func TestFixedDecoysStayPut(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	fleet := newFleet(t, rng)
	cc, err := NewCountermeasureController(alwaysTrigger(1), rng)
	require.NoError(t, err)

	fleet.Step()
	cc.Update(fleet)
	spawned := cc.ChaffPositions()
	for tick := 0; tick < 20; tick++ {
		fleet.Step()
		cc.Update(fleet)
		assert.Equal(t, spawned, cc.ChaffPositions())
	}
}

func TestCountermeasureConfigValidate(t *testing.T) {
	cfg := DefaultCountermeasureConfig()
	cfg.Chaff.Duration = 0
	_, err := NewCountermeasureController(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	cfg = DefaultCountermeasureConfig()
	cfg.CornerReflector.TriggerProbability = 2
	_, err = NewCountermeasureController(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestEngagementNoCountermeasures(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.CarrierCount = 2
	cfg.MissileCount = 1
	cfg.MaxSteps = 500
	cfg.ChaffMaxOccurrences = 0
	cfg.CornerReflectorMaxOccurrences = 0

	var decoyDetections int
	ec := NewEngagementController(SinkFunc(func(frame TickFrame) {
		for _, rec := range frame.Records {
			for _, slot := range rec.Slots {
				if slot.Detected() && slot.Class == core.TargetClassDecoy {
					decoyDetections++
				}
			}
		}
	}))
	require.NoError(t, ec.Init(cfg))

	for steps := 0; steps < 1000; steps++ {
		terminated := ec.Step()
		assert.Len(t, ec.Targets(), 2)
		for _, tg := range ec.Targets() {
			assert.Equal(t, core.TargetClassPrimary, tg.Class)
		}
		if terminated {
			break
		}
	}

	done, _ := ec.Terminated()
	assert.True(t, done)
	assert.LessOrEqual(t, ec.Tick(), 500)
	assert.Zero(t, decoyDetections)
}

func TestEngagementDistanceStrictlyDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fleet, err := core.NewCarrierFleetAt(
		[]core.Vector3D{{X: 10, Y: 10}}, []core.Vector3D{{}}, core.DefaultFleetConfig(), rng)
	require.NoError(t, err)
	swarm := core.NewMissileSwarmFrom([]core.Missile{{Position: core.DefaultLaunchPoint}})

	cfg := DefaultEngineConfig()
	cfg.CarrierCount = 1
	cfg.MissileCount = 1
	cfg.MissileSpeed = 0.03
	cfg.MaxSteps = 5000
	cfg.ChaffMaxOccurrences = 0
	cfg.CornerReflectorMaxOccurrences = 0

	ec := NewEngagementController()
	require.NoError(t, ec.InitWith(cfg, fleet, swarm, rng))

	carrier := core.Vector3D{X: 10, Y: 10}
	prev := core.DefaultLaunchPoint.DistanceTo(carrier)
	terminated := false
	for !terminated {
		terminated = ec.Step()
		if terminated {
			break
		}
		d := ec.MissDistances()[0]
		assert.Less(t, d, prev)
		prev = d
	}

	_, reason := ec.Terminated()
	assert.Equal(t, TerminationAllLanded, reason)
	assert.Less(t, ec.Tick(), 5000)
}

func TestEngagementResetReplaysSeed(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Seed = 1234
	cfg.Countermeasures = alwaysTrigger(0)
	cfg.Countermeasures.Chaff.TriggerProbability = 0.05
	cfg.Countermeasures.CornerReflector.TriggerProbability = 0.05
	cfg.ChaffMaxOccurrences = 2
	cfg.CornerReflectorMaxOccurrences = 2

	ec := NewEngagementController()
	require.NoError(t, ec.Init(cfg))

	run := func() []Snapshot {
		var snaps []Snapshot
		for i := 0; i < 40; i++ {
			ec.Step()
			snap, err := ec.Snapshot()
			require.NoError(t, err)
			snaps = append(snaps, snap)
		}
		return snaps
	}

	first := run()
	require.NoError(t, ec.Reset())
	assert.Equal(t, 0, ec.Tick())
	second := run()
	assert.Equal(t, first, second)
}

func TestEngagementMaxSteps(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.MissileSpeed = 0
	cfg.MaxSteps = 25

	frames := 0
	ec := NewEngagementController(SinkFunc(func(frame TickFrame) {
		frames++
		assert.Len(t, frame.Records, cfg.MissileCount*core.NumSensors)
	}))
	require.NoError(t, ec.Init(cfg))

	steps := 0
	for !ec.Step() {
		steps++
	}
	assert.Equal(t, 24, steps)
	assert.Equal(t, 25, frames)
	_, reason := ec.Terminated()
	assert.Equal(t, TerminationMaxSteps, reason)

	// further steps are no-ops
	assert.True(t, ec.Step())
	assert.Equal(t, 25, frames)
}

func TestEngagementNotInitialized(t *testing.T) {
	ec := NewEngagementController()
	assert.True(t, ec.Step())
	assert.ErrorIs(t, ec.Reset(), ErrNotInitialized)
	_, err := ec.Snapshot()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*EngineConfig)
	}{
		{"no carriers", func(c *EngineConfig) { c.CarrierCount = 0 }},
		{"negative missiles", func(c *EngineConfig) { c.MissileCount = -1 }},
		{"negative speed", func(c *EngineConfig) { c.MissileSpeed = -0.1 }},
		{"zero max steps", func(c *EngineConfig) { c.MaxSteps = 0 }},
		{"negative occurrences", func(c *EngineConfig) { c.ChaffMaxOccurrences = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.modify(&cfg)
			assert.Error(t, NewEngagementController().Init(cfg))
		})
	}
}
