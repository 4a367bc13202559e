package core

import "math"

// nearZero is the length below which a direction or horizontal distance is treated as degenerate
const nearZero = 1e-8

// Vector3D is a point or displacement in the simulation frame
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3D methods
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vector3D) Subtract(other Vector3D) Vector3D {
	return Vector3D{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector, or ok=false when v is too short to have a direction
func (v Vector3D) Normalize() (Vector3D, bool) {
	mag := v.Magnitude()
	if mag < nearZero {
		return Vector3D{}, false
	}
	return v.Scale(1.0 / mag), true
}

func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Subtract(other).Magnitude()
}

// Bearing holds the true line-of-sight geometry from an observer to a target
type Bearing struct {
	Range     float64
	Azimuth   float64 // radians, atan2(dy, dx)
	Elevation float64 // radians, 0 when the target is directly above/below
}

// BearingTo computes range, azimuth and elevation from observer to target
func BearingTo(observer, target Vector3D) Bearing {
	d := target.Subtract(observer)
	horizontal := math.Hypot(d.X, d.Y)

	elevation := 0.0
	if horizontal > nearZero {
		elevation = math.Atan2(d.Z, horizontal)
	}

	return Bearing{
		Range:     d.Magnitude(),
		Azimuth:   math.Atan2(d.Y, d.X),
		Elevation: elevation,
	}
}

// Project back-projects a range and bearing from the observer into Cartesian coordinates
func Project(observer Vector3D, r, azimuth, elevation float64) Vector3D {
	cosEl := math.Cos(elevation)
	return Vector3D{
		X: observer.X + r*cosEl*math.Cos(azimuth),
		Y: observer.Y + r*cosEl*math.Sin(azimuth),
		Z: observer.Z + r*math.Sin(elevation),
	}
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// copyPositions returns a snapshot that callers may keep without aliasing internal state
func copyPositions(src []Vector3D) []Vector3D {
	out := make([]Vector3D, len(src))
	copy(out, src)
	return out
}
