// Package quat implements the quaternion frame math of the control core under
// both supported scalar orderings. Training frameworks disagree on whether the
// scalar component of a quaternion comes first or last; the ordering is a
// deployment choice consumed by every function here, never a separate code
// path.
package quat

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Convention selects the scalar ordering of a stored quaternion.
type Convention int

const (
	// ScalarFirst stores (w, x, y, z).
	ScalarFirst Convention = iota
	// ScalarLast stores (x, y, z, w).
	ScalarLast
)

func (c Convention) String() string {
	if c == ScalarFirst {
		return "scalar-first"
	}
	return "scalar-last"
}

// ParseConvention maps a config framework string to a Convention. The names
// follow the training frameworks the policies come from.
func ParseConvention(s string) (Convention, error) {
	switch s {
	case "isaacsim", "wxyz":
		return ScalarFirst, nil
	case "isaacgym", "xyzw":
		return ScalarLast, nil
	}
	return 0, fmt.Errorf("quat: unknown convention %q", s)
}

// Identity returns the identity quaternion in the given ordering.
func Identity(c Convention) [4]float64 {
	if c == ScalarFirst {
		return [4]float64{1, 0, 0, 0}
	}
	return [4]float64{0, 0, 0, 1}
}

func split(q [4]float64, c Convention) (w float64, v r3.Vector) {
	if c == ScalarFirst {
		return q[0], r3.Vector{X: q[1], Y: q[2], Z: q[3]}
	}
	return q[3], r3.Vector{X: q[0], Y: q[1], Z: q[2]}
}

// RotateInverse rotates the world-frame vector v into the body frame of q:
//
//	out = v·(2w²−1) − 2w·(q_vec×v) + 2·q_vec·(q_vec·v)
func RotateInverse(q [4]float64, v r3.Vector, c Convention) r3.Vector {
	w, qv := split(q, c)
	a := v.Mul(2*w*w - 1)
	b := qv.Cross(v).Mul(2 * w)
	d := qv.Mul(2 * qv.Dot(v))
	return a.Sub(b).Add(d)
}

// RollPitch extracts roll and pitch in degrees. The asin argument is clamped
// so pitch saturates at ±90° instead of hitting the domain singularity.
func RollPitch(q [4]float64, c Convention) (roll, pitch float64) {
	const rad2deg = 180 / math.Pi
	w, qv := split(q, c)
	x, y, z := qv.X, qv.Y, qv.Z

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll = math.Atan2(sinrCosp, cosrCosp) * rad2deg

	sinp := 2 * (w*y - z*x)
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(90, sinp)
	} else {
		pitch = math.Asin(sinp) * rad2deg
	}
	return roll, pitch
}
