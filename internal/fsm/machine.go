// Package fsm implements the behavior state machine: idle, stand-up,
// sit-down and the two learned modes, dispatched as a tagged variant through
// a single Tick function.
//
// The machine owns the persistent joint command. Each mode's tick overwrites
// only the command fields it cares about; everything else keeps its previous
// value, so a late inference result never zeroes the actuators.
package fsm

import (
	"math"
	"sync"

	"github.com/edaniels/golog"

	"github.com/san-kum/quadctl/internal/action"
	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/loop"
	"github.com/san-kum/quadctl/internal/robot"
)

// progressStep is the per-tick increment of the stand-up and sit-down ramps.
// The ramp is a fixed tick count, not a fixed duration: 500 ticks regardless
// of the configured period.
const progressStep = 1.0 / 500.0

// Machine is the behavior mode controller. Tick runs on the control task;
// the inference task only observes it through Mode and Session.
type Machine struct {
	log      golog.Logger
	base     *config.Config
	profiles config.Provider
	profile  string
	n        int

	target  *loop.Cell[robot.ControlTarget]
	handoff *loop.Latest[action.Decoded]

	mu       sync.RWMutex // guards the fields below for cross-task readers
	mode     robot.Mode
	session  *Session
	ready    bool
	progress float64

	// control-task-owned state
	rampTicks int
	startPose []float64
	standPose []float64
	cmd       *robot.JointCommand
}

// New returns a machine in idle. base supplies the fixed ramp gains and the
// default pose; profile names the config the learned modes activate with.
func New(log golog.Logger, base *config.Config, profiles config.Provider, profile string,
	target *loop.Cell[robot.ControlTarget], handoff *loop.Latest[action.Decoded]) *Machine {
	return &Machine{
		log:      log,
		base:     base,
		profiles: profiles,
		profile:  profile,
		n:        base.NumDOFs,
		target:   target,
		handoff:  handoff,
		mode:     robot.ModeIdle,
		cmd:      robot.NewJointCommand(base.NumDOFs),
	}
}

// Mode returns the current behavior mode.
func (m *Machine) Mode() robot.Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Progress returns the ramp progress of the transitional modes.
func (m *Machine) Progress() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress
}

// Session returns the active inference session, if a learned mode finished
// activating. The inference task owns the session's internals.
func (m *Machine) Session() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil || !m.ready {
		return nil, false
	}
	return m.session, true
}

// Command exposes the persistent joint command.
func (m *Machine) Command() *robot.JointCommand { return m.cmd }

// Tick runs one control step: act for the current mode, then evaluate the
// transition table. Transitions are unguarded and immediate; the new mode's
// behavior starts on the next tick.
func (m *Machine) Tick(st robot.RobotState, tgt robot.ControlTarget) *robot.JointCommand {
	m.run(st)
	next := m.next(tgt.Mode)
	if next != m.mode {
		m.exit()
		m.enter(next, st)
	}
	return m.cmd
}

func (m *Machine) run(st robot.RobotState) {
	switch m.mode {
	case robot.ModeIdle:
		copy(m.cmd.Q, st.Q)
	case robot.ModeStandUp:
		m.ramp(m.base.DefaultDofPos)
	case robot.ModeSitDown:
		m.ramp(m.standPose)
	case robot.ModeLocomotion, robot.ModeNavigation:
		m.runLearned()
	}
}

func (m *Machine) ramp(target []float64) {
	if m.progress >= 1 {
		return
	}
	m.rampTicks++
	p := math.Min(float64(m.rampTicks)*progressStep, 1)
	m.mu.Lock()
	m.progress = p
	m.mu.Unlock()
	for i := 0; i < m.n; i++ {
		m.cmd.Q[i] = (1-p)*m.startPose[i] + p*target[i]
		m.cmd.DQ[i] = 0
		m.cmd.Kp[i] = m.base.FixedKp[i]
		m.cmd.Kd[i] = m.base.FixedKd[i]
		m.cmd.Tau[i] = 0
	}
}

func (m *Machine) runLearned() {
	if !m.ready || m.session == nil {
		return
	}
	dec, ok := m.handoff.TryPop()
	if !ok {
		// Inference is late or absent; hold the previous command.
		return
	}
	cfg := m.session.Cfg
	for i := 0; i < m.n; i++ {
		if dec.Pos != nil {
			m.cmd.Q[i] = dec.Pos[i]
		}
		if dec.Vel != nil {
			m.cmd.DQ[i] = dec.Vel[i]
		}
		m.cmd.Kp[i] = cfg.RLKp[i]
		m.cmd.Kd[i] = cfg.RLKd[i]
		m.cmd.Tau[i] = 0
	}
}

// next applies the transition table for the requested mode. Climb is reserved
// and never entered.
func (m *Machine) next(req robot.Mode) robot.Mode {
	switch m.mode {
	case robot.ModeIdle:
		if req == robot.ModeStandUp {
			return req
		}
	case robot.ModeStandUp:
		if m.progress >= 1 {
			switch req {
			case robot.ModeLocomotion, robot.ModeNavigation, robot.ModeSitDown, robot.ModeIdle:
				return req
			}
		}
	case robot.ModeSitDown:
		if m.progress >= 1 {
			return robot.ModeIdle
		}
		if req == robot.ModeStandUp {
			return req
		}
	case robot.ModeLocomotion, robot.ModeNavigation:
		switch req {
		case robot.ModeSitDown, robot.ModeStandUp, robot.ModeLocomotion, robot.ModeNavigation, robot.ModeIdle:
			return req
		}
	}
	return m.mode
}

func (m *Machine) enter(mode robot.Mode, st robot.RobotState) {
	m.mu.Lock()
	m.mode = mode
	m.progress = 0
	m.mu.Unlock()
	m.rampTicks = 0

	switch mode {
	case robot.ModeStandUp:
		m.startPose = append([]float64(nil), st.Q...)
		m.standPose = append([]float64(nil), st.Q...)
	case robot.ModeSitDown:
		m.startPose = append([]float64(nil), st.Q...)
		// TODO: confirm sit-down should keep targeting the pose captured at
		// the last stand-up activation rather than a fixed rest pose.
		if m.standPose == nil {
			m.standPose = append([]float64(nil), st.Q...)
		}
	case robot.ModeLocomotion, robot.ModeNavigation:
		m.activate(mode)
	}
}

func (m *Machine) exit() {
	if m.mode.Learned() {
		m.mu.Lock()
		m.session = nil
		m.ready = false
		m.mu.Unlock()
	}
}

// activate loads the profile and policy for a learned mode. Failure is
// recoverable: the machine logs it, stays unready and forces the requested
// mode back to stand-up so the next tick transitions out.
func (m *Machine) activate(mode robot.Mode) {
	sess, err := NewSession(m.profiles, m.profile)
	if err != nil {
		if m.log != nil {
			m.log.Errorf("activating %s with profile %s failed: %v", mode, m.profile, err)
		}
		m.mu.Lock()
		m.ready = false
		m.mu.Unlock()
		m.target.Update(func(t robot.ControlTarget) robot.ControlTarget {
			t.Mode = robot.ModeStandUp
			return t
		})
		return
	}
	m.mu.Lock()
	m.session = sess
	m.ready = true
	m.mu.Unlock()
	if m.log != nil {
		m.log.Infof("%s active with profile %s (%d obs)", mode, m.profile, sess.Asm.Width())
	}
}
