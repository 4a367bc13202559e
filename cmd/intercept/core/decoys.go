package core

// TargetClass distinguishes real platforms from injected decoys
type TargetClass string

const (
	TargetClassPrimary TargetClass = "primary"
	TargetClassDecoy   TargetClass = "decoy"
)

// Target is one entry of the unified per-tick target list
type Target struct {
	Position Vector3D    `json:"position"`
	Class    TargetClass `json:"class"`
}

// Anchor ties a moving decoy to its owning carrier by a fixed relative offset
type Anchor struct {
	CarrierIndex int      `json:"carrier_index"`
	Offset       Vector3D `json:"offset"`
}

// DecoyGeometry is the geometry emitted by a countermeasure instance.
// Implementations are FixedGeometry and MovingGeometry.
type DecoyGeometry interface {
	// Resolve returns absolute decoy positions given the current carrier positions
	Resolve(carriers []Vector3D) []Vector3D
	isDecoyGeometry()
}

// FixedGeometry holds absolute decoy points frozen at spawn time
type FixedGeometry struct {
	Points []Vector3D
}

func (FixedGeometry) isDecoyGeometry() {}

// Resolve ignores the carriers: fixed decoys never follow their origin
func (g FixedGeometry) Resolve(_ []Vector3D) []Vector3D {
	return copyPositions(g.Points)
}

// MovingGeometry holds carrier-relative anchors re-resolved every tick
type MovingGeometry struct {
	Anchors []Anchor
}

func (MovingGeometry) isDecoyGeometry() {}

// Resolve places every anchor at its carrier's current position plus the stored offset.
// Anchors whose carrier no longer exists are dropped.
func (g MovingGeometry) Resolve(carriers []Vector3D) []Vector3D {
	points := make([]Vector3D, 0, len(g.Anchors))
	for _, a := range g.Anchors {
		if a.CarrierIndex < 0 || a.CarrierIndex >= len(carriers) {
			continue
		}
		points = append(points, carriers[a.CarrierIndex].Add(a.Offset))
	}
	return points
}
