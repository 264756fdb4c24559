// Package obs builds the policy input: a fixed-width numeric row concatenated
// from configured observation terms, optionally stacked over time by a
// [History] buffer.
package obs

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/quat"
	"github.com/san-kum/quadctl/internal/robot"
)

var worldDown = r3.Vector{X: 0, Y: 0, Z: -1}

// termWidth maps each recognized term to its sub-vector width. Per-DOF terms
// are marked with -1 and resolved against the profile's DOF count.
var termWidth = map[string]int{
	"lin_vel":       3,
	"ang_vel_body":  3,
	"ang_vel_world": 3,
	"gravity_vec":   3,
	"commands":      3,
	"dof_pos":       -1,
	"dof_vel":       -1,
	"actions":       -1,
	"phase":         6,
	"g1_phase":      2,
}

// Assembler produces one observation row per inference tick.
type Assembler struct {
	cfg    *config.Config
	conv   quat.Convention
	wheels map[int]bool
	width  int
	linVel r3.Vector
}

// NewAssembler validates the profile's term list and returns an assembler.
// An unrecognized term name is a configuration error, surfaced here so a mode
// activation aborts instead of silently skipping the term.
func NewAssembler(cfg *config.Config) (*Assembler, error) {
	conv, err := cfg.Convention()
	if err != nil {
		return nil, err
	}
	if len(cfg.Observations) == 0 {
		return nil, fmt.Errorf("obs: profile %s has no observation terms", cfg.Name)
	}
	width := 0
	for _, term := range cfg.Observations {
		w, ok := termWidth[term]
		if !ok {
			return nil, fmt.Errorf("obs: unrecognized observation term %q", term)
		}
		if w < 0 {
			w = cfg.NumDOFs
		}
		width += w
	}
	return &Assembler{
		cfg:    cfg,
		conv:   conv,
		wheels: cfg.Wheels(),
		width:  width,
	}, nil
}

// Width is the row length: the sum of the configured terms' widths.
func (a *Assembler) Width() int { return a.width }

// SetLinearVelocity supplies a body linear velocity for the lin_vel term.
// Real hardware has no direct measurement, so it stays zero unless a
// deployment feeds odometry.
func (a *Assembler) SetLinearVelocity(v r3.Vector) { a.linVel = v }

// Assemble builds one row from the given snapshot. lastActions is the raw
// policy output of the previous inference tick (the feedback term, unscaled);
// steps counts elapsed inference ticks. The result is clamped elementwise to
// [-clip_obs, clip_obs].
func (a *Assembler) Assemble(st robot.RobotState, tgt robot.ControlTarget, lastActions []float64, steps int) []float64 {
	row := make([]float64, 0, a.width)
	gyro := r3.Vector{X: st.Gyro[0], Y: st.Gyro[1], Z: st.Gyro[2]}

	for _, term := range a.cfg.Observations {
		switch term {
		case "lin_vel":
			row = appendVec(row, a.linVel.Mul(a.cfg.LinVelScale))
		case "ang_vel_body":
			row = appendVec(row, gyro.Mul(a.cfg.AngVelScale))
		case "ang_vel_world":
			body := quat.RotateInverse(st.Quat, gyro, a.conv)
			row = appendVec(row, body.Mul(a.cfg.AngVelScale))
		case "gravity_vec":
			row = appendVec(row, quat.RotateInverse(st.Quat, worldDown, a.conv))
		case "commands":
			row = append(row,
				tgt.X*a.cfg.CommandsScale[0],
				tgt.Y*a.cfg.CommandsScale[1],
				tgt.Yaw*a.cfg.CommandsScale[2])
		case "dof_pos":
			for i := 0; i < a.cfg.NumDOFs; i++ {
				rel := st.Q[i] - a.cfg.DefaultDofPos[i]
				if a.wheels[i] {
					rel = 0
				}
				row = append(row, rel*a.cfg.DofPosScale)
			}
		case "dof_vel":
			for i := 0; i < a.cfg.NumDOFs; i++ {
				row = append(row, st.DQ[i]*a.cfg.DofVelScale)
			}
		case "actions":
			for i := 0; i < a.cfg.NumDOFs; i++ {
				if i < len(lastActions) {
					row = append(row, lastActions[i])
				} else {
					row = append(row, 0)
				}
			}
		case "phase":
			phi := math.Pi / 2 * float64(steps) * a.cfg.Dt * float64(a.cfg.Decimation)
			row = append(row,
				math.Sin(phi), math.Cos(phi),
				math.Sin(phi/2), math.Cos(phi/2),
				math.Sin(phi/4), math.Cos(phi/4))
		case "g1_phase":
			const period = 0.8
			count := float64(steps) * a.cfg.Dt * float64(a.cfg.Decimation)
			frac := math.Mod(count, period) / period
			row = append(row, math.Sin(2*math.Pi*frac), math.Cos(2*math.Pi*frac))
		}
	}

	clip := a.cfg.ClipObs
	for i, v := range row {
		if v > clip {
			row[i] = clip
		} else if v < -clip {
			row[i] = -clip
		}
	}
	return row
}

func appendVec(row []float64, v r3.Vector) []float64 {
	return append(row, v.X, v.Y, v.Z)
}
