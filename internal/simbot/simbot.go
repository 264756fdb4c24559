// Package simbot is a stand-in robot for bench runs: a first-order joint
// model that relaxes toward the commanded position each step. It feeds the
// control pipeline a plausible state without any hardware attached.
package simbot

import (
	"sync"

	"github.com/san-kum/quadctl/internal/robot"
)

// Robot tracks commanded joint positions with a fixed per-step gain. It
// implements both ends of the hardware interface, so the control and input
// tasks can run against it unchanged.
type Robot struct {
	mu    sync.Mutex
	dt    float64
	gain  float64
	q     []float64
	dq    []float64
	tau   []float64
	quat  [4]float64
	start []float64
}

// New returns a robot resting at pose start with an identity orientation in
// scalar-first ordering. gain in (0, 1] sets how far each Write moves the
// joints toward their target.
func New(start []float64, dt, gain float64) *Robot {
	r := &Robot{
		dt:    dt,
		gain:  gain,
		q:     append([]float64(nil), start...),
		dq:    make([]float64, len(start)),
		tau:   make([]float64, len(start)),
		quat:  [4]float64{1, 0, 0, 0},
		start: append([]float64(nil), start...),
	}
	return r
}

// SetQuat overrides the base orientation, in whatever ordering the active
// profile expects.
func (r *Robot) SetQuat(q [4]float64) {
	r.mu.Lock()
	r.quat = q
	r.mu.Unlock()
}

// Read implements robot.SensorSource.
func (r *Robot) Read() robot.RobotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := robot.NewRobotState(len(r.q))
	copy(st.Q, r.q)
	copy(st.DQ, r.dq)
	copy(st.TauEst, r.tau)
	st.Quat = r.quat
	return st
}

// Write implements robot.ActuatorSink: each command moves the joints a
// fraction of the way to the target and derives a velocity from the step.
func (r *Robot) Write(cmd *robot.JointCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.q {
		if i >= len(cmd.Q) {
			break
		}
		prev := r.q[i]
		r.q[i] += r.gain * (cmd.Q[i] - r.q[i])
		if r.dt > 0 {
			r.dq[i] = (r.q[i] - prev) / r.dt
		}
		r.tau[i] = cmd.Kp[i]*(cmd.Q[i]-r.q[i]) - cmd.Kd[i]*r.dq[i] + cmd.Tau[i]
	}
}

// Reset returns the joints to the starting pose at rest.
func (r *Robot) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy(r.q, r.start)
	for i := range r.dq {
		r.dq[i] = 0
		r.tau[i] = 0
	}
}
