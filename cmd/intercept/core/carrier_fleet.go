package core

import (
	"fmt"
	"math"
	"math/rand"
)

// FleetConfig holds the geometry constants of the carrier area
type FleetConfig struct {
	SpawnMin       float64 // lower spawn bound on x and y
	SpawnMax       float64 // upper spawn bound on x and y
	BoundMin       float64 // reflecting boundary, lower
	BoundMax       float64 // reflecting boundary, upper
	MinDecoys      int     // decoys generated per carrier, lower bound
	MaxDecoys      int     // decoys generated per carrier, upper bound
	DecoyOffsetMax float64 // decoy offsets are uniform in [-DecoyOffsetMax, DecoyOffsetMax]
}

// DefaultFleetConfig returns the standard 40x40 operating box
func DefaultFleetConfig() FleetConfig {
	return FleetConfig{
		SpawnMin:       5,
		SpawnMax:       35,
		BoundMin:       0,
		BoundMax:       40,
		MinDecoys:      1,
		MaxDecoys:      3,
		DecoyOffsetMax: 1,
	}
}

// Validate checks the fleet geometry for consistency
func (c FleetConfig) Validate() error {
	if c.BoundMin >= c.BoundMax {
		return fmt.Errorf("fleet bounds min must be less than max")
	}
	if c.SpawnMin > c.SpawnMax {
		return fmt.Errorf("fleet spawn min must not exceed spawn max")
	}
	if c.SpawnMin < c.BoundMin || c.SpawnMax > c.BoundMax {
		return fmt.Errorf("fleet spawn area must lie inside the bounds")
	}
	if c.MinDecoys < 0 || c.MinDecoys > c.MaxDecoys {
		return fmt.Errorf("decoys per carrier range is invalid (%d-%d)", c.MinDecoys, c.MaxDecoys)
	}
	if c.DecoyOffsetMax < 0 {
		return fmt.Errorf("decoy offset must be non-negative")
	}
	return nil
}

// CarrierFleet owns carrier positions and their reflecting straight-line motion
type CarrierFleet struct {
	positions []Vector3D
	headings  []Vector3D
	speed     float64
	config    FleetConfig
	rng       *rand.Rand
}

// NewCarrierFleet places count carriers uniformly in the spawn square at z=0, each with a
// heading of the given speed along a uniformly random angle
func NewCarrierFleet(count int, speed float64, config FleetConfig, rng *rand.Rand) (*CarrierFleet, error) {
	if count < 0 {
		return nil, fmt.Errorf("carrier count must be non-negative, got %d", count)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fleet config: %w", err)
	}

	f := &CarrierFleet{
		positions: make([]Vector3D, count),
		headings:  make([]Vector3D, count),
		speed:     speed,
		config:    config,
		rng:       rng,
	}

	span := config.SpawnMax - config.SpawnMin
	for i := 0; i < count; i++ {
		f.positions[i] = Vector3D{
			X: config.SpawnMin + rng.Float64()*span,
			Y: config.SpawnMin + rng.Float64()*span,
		}
		theta := rng.Float64() * 2 * math.Pi
		f.headings[i] = Vector3D{X: math.Cos(theta), Y: math.Sin(theta)}.Scale(speed)
	}

	return f, nil
}

// NewCarrierFleetAt builds a fleet from explicit positions and headings (z is forced to 0)
func NewCarrierFleetAt(positions, headings []Vector3D, config FleetConfig, rng *rand.Rand) (*CarrierFleet, error) {
	if len(positions) != len(headings) {
		return nil, fmt.Errorf("got %d positions but %d headings", len(positions), len(headings))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fleet config: %w", err)
	}

	f := &CarrierFleet{
		positions: make([]Vector3D, len(positions)),
		headings:  make([]Vector3D, len(headings)),
		config:    config,
		rng:       rng,
	}
	for i := range positions {
		f.positions[i] = Vector3D{X: positions[i].X, Y: positions[i].Y}
		f.headings[i] = Vector3D{X: headings[i].X, Y: headings[i].Y}
		if m := f.headings[i].Magnitude(); m > f.speed {
			f.speed = m
		}
	}
	return f, nil
}

// Step advances every carrier by its heading and reflects it off the boundary.
// An overshoot past a wall is mirrored back inside so positions never leave the box.
func (f *CarrierFleet) Step() {
	for i := range f.positions {
		p := f.positions[i].Add(f.headings[i])
		h := f.headings[i]

		p.X, h.X = f.reflect(p.X, h.X)
		p.Y, h.Y = f.reflect(p.Y, h.Y)
		p.Z = 0

		f.positions[i] = p
		f.headings[i] = h
	}
}

func (f *CarrierFleet) reflect(pos, heading float64) (float64, float64) {
	lo, hi := f.config.BoundMin, f.config.BoundMax
	switch {
	case pos < lo:
		pos = 2*lo - pos
		heading = -heading
	case pos > hi:
		pos = 2*hi - pos
		heading = -heading
	}
	// a single step longer than the box would still overshoot after mirroring
	return math.Max(lo, math.Min(hi, pos)), heading
}

// Positions returns a snapshot of current carrier positions
func (f *CarrierFleet) Positions() []Vector3D {
	return copyPositions(f.positions)
}

// Headings returns a snapshot of current carrier headings (velocity per tick)
func (f *CarrierFleet) Headings() []Vector3D {
	return copyPositions(f.headings)
}

// Count returns the number of carriers
func (f *CarrierFleet) Count() int {
	return len(f.positions)
}

// Speed returns the per-tick speed carriers were created with
func (f *CarrierFleet) Speed() float64 {
	return f.speed
}

// SpawnChaff draws 1-3 decoys per carrier around its current position
func (f *CarrierFleet) SpawnChaff() FixedGeometry {
	return FixedGeometry{Points: f.absoluteDecoys()}
}

// SpawnFixedCornerReflectors uses the chaff offset model; the result is never re-associated
// with a carrier
func (f *CarrierFleet) SpawnFixedCornerReflectors() FixedGeometry {
	return FixedGeometry{Points: f.absoluteDecoys()}
}

// SpawnMovingCornerReflectors returns carrier-relative anchors that follow their carrier
func (f *CarrierFleet) SpawnMovingCornerReflectors() MovingGeometry {
	var anchors []Anchor
	for i := range f.positions {
		for _, off := range f.drawOffsets() {
			anchors = append(anchors, Anchor{CarrierIndex: i, Offset: off})
		}
	}
	return MovingGeometry{Anchors: anchors}
}

func (f *CarrierFleet) absoluteDecoys() []Vector3D {
	var points []Vector3D
	for _, pos := range f.positions {
		for _, off := range f.drawOffsets() {
			points = append(points, pos.Add(off))
		}
	}
	return points
}

// drawOffsets draws the decoy count for one carrier and its independent x/y offsets
func (f *CarrierFleet) drawOffsets() []Vector3D {
	n := f.config.MinDecoys + f.rng.Intn(f.config.MaxDecoys-f.config.MinDecoys+1)
	extent := f.config.DecoyOffsetMax

	offsets := make([]Vector3D, n)
	for i := range offsets {
		offsets[i] = Vector3D{
			X: (f.rng.Float64()*2 - 1) * extent,
			Y: (f.rng.Float64()*2 - 1) * extent,
		}
	}
	return offsets
}
