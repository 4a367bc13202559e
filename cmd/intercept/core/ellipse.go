package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ellipse is the 1-sigma uncertainty region of a measurement projected on the x/y plane
type Ellipse struct {
	MajorAxis float64 // 2*sqrt(largest eigenvalue)
	MinorAxis float64 // 2*sqrt(smallest eigenvalue)
	Angle     float64 // orientation of the major axis, radians in (-pi, pi]
}

// bearingJacobian is d(x,y)/d(az,el) of the back-projection evaluated at the given bearing
func bearingJacobian(b Bearing) *mat.Dense {
	r := b.Range
	sinAz, cosAz := math.Sincos(b.Azimuth)
	sinEl, cosEl := math.Sincos(b.Elevation)

	return mat.NewDense(2, 2, []float64{
		-r * cosEl * sinAz, -r * sinEl * cosAz,
		r * cosEl * cosAz, -r * sinEl * sinAz,
	})
}

// PositionCovariance propagates independent azimuth/elevation errors with standard deviation
// sigma (radians) through the back-projection: Cov_xy = J * diag(sigma^2, sigma^2) * J^T
func PositionCovariance(b Bearing, sigma float64) *mat.SymDense {
	jac := bearingJacobian(b)
	angular := mat.NewDiagDense(2, []float64{sigma * sigma, sigma * sigma})

	var tmp, cov mat.Dense
	tmp.Mul(jac, angular)
	cov.Mul(&tmp, jac.T())

	offDiag := (cov.At(0, 1) + cov.At(1, 0)) / 2
	return mat.NewSymDense(2, []float64{
		cov.At(0, 0), offDiag,
		offDiag, cov.At(1, 1),
	})
}

// ErrorEllipse eigendecomposes the propagated covariance of a bearing measurement
func ErrorEllipse(b Bearing, sigma float64) Ellipse {
	return EllipseFromCovariance(PositionCovariance(b, sigma))
}

// EllipseFromCovariance converts a 2x2 covariance into axis lengths and major-axis orientation
func EllipseFromCovariance(cov *mat.SymDense) Ellipse {
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		// only non-finite input fails to factorize
		return Ellipse{}
	}

	// gonum orders eigenvalues ascending
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	major, minor := values[1], values[0]
	angle := math.Atan2(vectors.At(1, 1), vectors.At(0, 1))
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	}

	return Ellipse{
		MajorAxis: 2 * math.Sqrt(math.Max(major, 0)),
		MinorAxis: 2 * math.Sqrt(math.Max(minor, 0)),
		Angle:     angle,
	}
}
