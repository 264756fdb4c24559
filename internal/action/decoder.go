// Package action converts raw policy output into joint-level targets.
package action

import (
	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/robot"
)

// Decoded is one decoded policy step. Pos and Vel are the targets tracked by
// the downstream PD loop; Tau is the diagnostic torque, clamped to the
// per-DOF limits. TauRaw is the same torque before clamping and is the signal
// the torque monitor watches, since the clamped one can never exceed its
// limit. Each vector may be independently absent (nil) and consumers must
// check presence per vector, never substitute zeros.
type Decoded struct {
	Pos    []float64
	Vel    []float64
	Tau    []float64
	TauRaw []float64
}

// Absent reports whether nothing was decoded.
func (d Decoded) Absent() bool {
	return d.Pos == nil && d.Vel == nil && d.Tau == nil
}

// Decoder maps policy output to joint targets under one profile.
type Decoder struct {
	cfg    *config.Config
	wheels map[int]bool
}

func NewDecoder(cfg *config.Config) *Decoder {
	return &Decoder{cfg: cfg, wheels: cfg.Wheels()}
}

// ClipActions clamps the raw vector to the profile's per-DOF action bounds.
// Profiles without bounds pass the vector through untouched.
func (d *Decoder) ClipActions(raw []float64) []float64 {
	lo, hi := d.cfg.ClipActionsLower, d.cfg.ClipActionsUpper
	if len(lo) == 0 || len(hi) == 0 {
		return raw
	}
	out := append([]float64(nil), raw...)
	for i := range out {
		if i < len(lo) && out[i] < lo[i] {
			out[i] = lo[i]
		}
		if i < len(hi) && out[i] > hi[i] {
			out[i] = hi[i]
		}
	}
	return out
}

// Decode scales the raw policy output and splits it into targets. Wheel DOFs
// are velocity-actuated: the scaled action becomes the velocity target and
// the position target stays pinned to the default pose. All other DOFs are
// position-actuated with zero velocity target. An absent or empty raw vector
// decodes to an absent result.
func (d *Decoder) Decode(raw []float64, st robot.RobotState) Decoded {
	if len(raw) == 0 {
		return Decoded{}
	}
	n := d.cfg.NumDOFs
	out := Decoded{
		Pos:    make([]float64, n),
		Vel:    make([]float64, n),
		Tau:    make([]float64, n),
		TauRaw: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		var a float64
		if i < len(raw) {
			a = raw[i] * d.cfg.ActionScale[i]
		}
		if d.wheels[i] {
			out.Pos[i] = d.cfg.DefaultDofPos[i]
			out.Vel[i] = a
		} else {
			out.Pos[i] = a + d.cfg.DefaultDofPos[i]
			out.Vel[i] = 0
		}

		tau := d.cfg.RLKp[i]*(a+d.cfg.DefaultDofPos[i]-st.Q[i]) - d.cfg.RLKd[i]*st.DQ[i]
		out.TauRaw[i] = tau
		limit := d.cfg.TorqueLimits[i]
		if tau > limit {
			tau = limit
		} else if tau < -limit {
			tau = -limit
		}
		out.Tau[i] = tau
	}
	return out
}
