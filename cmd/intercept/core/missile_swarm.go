package core

import (
	"errors"
	"fmt"
	"math/rand"
)

// NumSensors is the number of bearing sensors carried by every missile
const NumSensors = 5

// ErrInsufficientSensorCategories is returned when fewer distinct error categories exist than
// sensors to assign
var ErrInsufficientSensorCategories = errors.New("insufficient sensor error categories")

// DefaultSensorCategories are the selectable angular error magnitudes in degrees
var DefaultSensorCategories = []float64{0.1, 0.2, 0.3, 0.4, 0.6}

// DefaultLaunchPoint is where every missile starts
var DefaultLaunchPoint = Vector3D{X: 0, Y: 0, Z: 15}

// Missile is an interceptor with a fixed sensor suite
type Missile struct {
	ID           int
	Position     Vector3D
	SensorErrors [NumSensors]float64 // degrees, immutable after construction
}

// MissileSwarm owns missile positions and the homing update
type MissileSwarm struct {
	missiles []Missile
}

// NewMissileSwarm creates count missiles at the launch point. Each missile draws NumSensors
// error magnitudes without replacement from the distinct values of categories.
func NewMissileSwarm(count int, launch Vector3D, categories []float64, rng *rand.Rand) (*MissileSwarm, error) {
	if count < 0 {
		return nil, fmt.Errorf("missile count must be non-negative, got %d", count)
	}

	distinct := distinctCategories(categories)
	if len(distinct) < NumSensors {
		return nil, fmt.Errorf("%w: need %d distinct values, got %d",
			ErrInsufficientSensorCategories, NumSensors, len(distinct))
	}

	missiles := make([]Missile, count)
	for i := range missiles {
		missiles[i] = Missile{ID: i, Position: launch}
		perm := rng.Perm(len(distinct))
		for s := 0; s < NumSensors; s++ {
			missiles[i].SensorErrors[s] = distinct[perm[s]]
		}
	}

	return &MissileSwarm{missiles: missiles}, nil
}

// NewMissileSwarmFrom wraps pre-built missiles; IDs are reassigned to slice order
func NewMissileSwarmFrom(missiles []Missile) *MissileSwarm {
	own := make([]Missile, len(missiles))
	copy(own, missiles)
	for i := range own {
		own[i].ID = i
	}
	return &MissileSwarm{missiles: own}
}

func distinctCategories(categories []float64) []float64 {
	seen := make(map[float64]struct{}, len(categories))
	out := make([]float64, 0, len(categories))
	for _, c := range categories {
		if c < 0 {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AssignedCarrier maps a missile to its carrier, wrapping when missiles outnumber carriers
func AssignedCarrier(missileID, carrierCount int) int {
	if carrierCount <= 0 {
		return -1
	}
	return missileID % carrierCount
}

// Step moves every missile speed units toward its assigned carrier
func (s *MissileSwarm) Step(speed float64, carriers []Vector3D) {
	if len(carriers) == 0 {
		return
	}
	for i := range s.missiles {
		m := &s.missiles[i]
		target := carriers[AssignedCarrier(m.ID, len(carriers))]
		dir, ok := target.Subtract(m.Position).Normalize()
		if !ok {
			continue
		}
		m.Position = m.Position.Add(dir.Scale(speed))
	}
}

// AllLanded reports whether every missile has reached z <= 0
func (s *MissileSwarm) AllLanded() bool {
	for _, m := range s.missiles {
		if m.Position.Z > 0 {
			return false
		}
	}
	return true
}

// Positions returns a snapshot of missile positions
func (s *MissileSwarm) Positions() []Vector3D {
	out := make([]Vector3D, len(s.missiles))
	for i, m := range s.missiles {
		out[i] = m.Position
	}
	return out
}

// Missiles returns a snapshot of all missiles
func (s *MissileSwarm) Missiles() []Missile {
	out := make([]Missile, len(s.missiles))
	copy(out, s.missiles)
	return out
}

// Count returns the number of missiles
func (s *MissileSwarm) Count() int {
	return len(s.missiles)
}

// MissDistances returns each missile's distance to its assigned carrier
func (s *MissileSwarm) MissDistances(carriers []Vector3D) []float64 {
	out := make([]float64, len(s.missiles))
	for i, m := range s.missiles {
		idx := AssignedCarrier(m.ID, len(carriers))
		if idx < 0 {
			out[i] = -1
			continue
		}
		out[i] = m.Position.DistanceTo(carriers[idx])
	}
	return out
}
