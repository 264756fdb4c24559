// Package safety holds the advisory hazard monitors. Both checks are
// stateless per call, never panic and never touch the command path: they log
// and report, leaving recovery policy to the deployment.
package safety

import (
	"math"

	"github.com/edaniels/golog"

	"github.com/san-kum/quadctl/internal/quat"
	"github.com/san-kum/quadctl/internal/robot"
)

// Violation records one out-of-bound torque sample.
type Violation struct {
	Index int
	Value float64
	Limit float64
}

// Monitor runs the torque and attitude bound checks. Escalate, when non-nil,
// is invoked with a protective mode request on an attitude violation; it is
// nil by default so the checks stay advisory.
type Monitor struct {
	Log          golog.Logger
	Conv         quat.Convention
	TorqueLimits []float64
	RollLimit    float64 // degrees
	PitchLimit   float64 // degrees
	Escalate     func(robot.Mode)
}

// CheckTorque reports every DOF whose diagnostic torque magnitude exceeds its
// configured limit, warning once per violating DOF.
func (m *Monitor) CheckTorque(tau []float64) []Violation {
	var out []Violation
	for i, v := range tau {
		if i >= len(m.TorqueLimits) {
			break
		}
		limit := m.TorqueLimits[i]
		if v < -limit || v > limit {
			out = append(out, Violation{Index: i, Value: v, Limit: limit})
			if m.Log != nil {
				m.Log.Warnf("torque(%d)=%.3f out of range (%.3f, %.3f)", i+1, v, -limit, limit)
			}
		}
	}
	return out
}

// CheckAttitude extracts roll and pitch from the orientation quaternion and
// reports whether either exceeds its threshold.
func (m *Monitor) CheckAttitude(q [4]float64) bool {
	roll, pitch := quat.RollPitch(q, m.Conv)
	bad := false
	if math.Abs(roll) > m.RollLimit {
		bad = true
		if m.Log != nil {
			m.Log.Warnf("roll exceeds %.1f degrees, current %.1f", m.RollLimit, roll)
		}
	}
	if math.Abs(pitch) > m.PitchLimit {
		bad = true
		if m.Log != nil {
			m.Log.Warnf("pitch exceeds %.1f degrees, current %.1f", m.PitchLimit, pitch)
		}
	}
	if bad && m.Escalate != nil {
		m.Escalate(robot.ModeSitDown)
	}
	return bad
}
