// Package drive wires the control pipeline together and runs it: a fast
// control task at the base period, a slower inference task at the decimated
// period and an optional operator input task, exchanging data through
// snapshot cells and a single-slot hand-off.
package drive

import (
	"context"
	"time"

	"github.com/edaniels/golog"

	"github.com/san-kum/quadctl/internal/action"
	"github.com/san-kum/quadctl/internal/config"
	"github.com/san-kum/quadctl/internal/fsm"
	"github.com/san-kum/quadctl/internal/loop"
	"github.com/san-kum/quadctl/internal/robot"
	"github.com/san-kum/quadctl/internal/safety"
	"github.com/san-kum/quadctl/internal/telemetry"
)

const inputPeriod = 50 * time.Millisecond

// Options collects the pieces an Orchestrator binds. Sensor and Actuator are
// required; Input and Nav are optional sources of operator and autonomous
// velocity targets.
type Options struct {
	Log      golog.Logger
	Cfg      *config.Config
	Profiles config.Provider
	Profile  string

	Sensor   robot.SensorSource
	Actuator robot.ActuatorSink
	Input    robot.ControlSource
	Nav      robot.VelocitySource

	Recorder *telemetry.Recorder
}

// Orchestrator owns the three periodic tasks and the channels between them.
// The control task is the only writer of actuator commands; the inference
// task only ever publishes through the hand-off slot.
type Orchestrator struct {
	log golog.Logger
	cfg *config.Config

	sensor   robot.SensorSource
	actuator robot.ActuatorSink
	input    robot.ControlSource
	nav      robot.VelocitySource

	state   *loop.Cell[robot.RobotState]
	target  *loop.Cell[robot.ControlTarget]
	handoff *loop.Latest[action.Decoded]

	machine  *fsm.Machine
	monitor  *safety.Monitor
	recorder *telemetry.Recorder
}

func New(o Options) (*Orchestrator, error) {
	conv, err := o.Cfg.Convention()
	if err != nil {
		return nil, err
	}
	target := &loop.Cell[robot.ControlTarget]{}
	handoff := &loop.Latest[action.Decoded]{}
	orc := &Orchestrator{
		log:      o.Log,
		cfg:      o.Cfg,
		sensor:   o.Sensor,
		actuator: o.Actuator,
		input:    o.Input,
		nav:      o.Nav,
		state:    &loop.Cell[robot.RobotState]{},
		target:   target,
		handoff:  handoff,
		machine:  fsm.New(o.Log, o.Cfg, o.Profiles, o.Profile, target, handoff),
		recorder: o.Recorder,
	}
	orc.state.Store(robot.NewRobotState(o.Cfg.NumDOFs))
	orc.monitor = &safety.Monitor{
		Log:          o.Log,
		Conv:         conv,
		TorqueLimits: o.Cfg.TorqueLimits,
		RollLimit:    o.Cfg.RollThreshold,
		PitchLimit:   o.Cfg.PitchThreshold,
		Escalate: func(mode robot.Mode) {
			target.Update(func(t robot.ControlTarget) robot.ControlTarget {
				t.Mode = mode
				return t
			})
		},
	}
	return orc, nil
}

// Machine exposes the behavior state machine for status display.
func (o *Orchestrator) Machine() *fsm.Machine { return o.machine }

// Target exposes the shared control target cell for in-process operator UIs.
func (o *Orchestrator) Target() *loop.Cell[robot.ControlTarget] { return o.target }

// Run starts the periodic tasks and blocks until the context is cancelled
// and all of them have drained.
func (o *Orchestrator) Run(ctx context.Context) {
	fast := loop.NewRunner("control", o.cfg.Period(), o.fastTick, o.log)
	slow := loop.NewRunner("inference", o.cfg.SlowPeriod(), o.slowTick, o.log)
	fast.Start(ctx)
	slow.Start(ctx)

	var in *loop.Runner
	if o.input != nil {
		in = loop.NewRunner("input", inputPeriod, o.inputTick, o.log)
		in.Start(ctx)
	}

	fast.Wait()
	slow.Wait()
	if in != nil {
		in.Wait()
	}
}

// fastTick is one control step: sample the robot, publish the snapshot, run
// the state machine and push the resulting command to the actuators.
func (o *Orchestrator) fastTick() {
	st := o.sensor.Read()
	o.state.Store(st.Clone())
	cmd := o.machine.Tick(st, o.target.Load())
	o.actuator.Write(cmd)
}

// slowTick is one inference step. It does nothing until a learned mode has
// an active session.
func (o *Orchestrator) slowTick() {
	sess, ok := o.machine.Session()
	if !ok {
		return
	}
	st := o.state.Load()
	tgt := o.target.Load()
	if o.machine.Mode() == robot.ModeNavigation && o.nav != nil {
		tgt.X, tgt.Y, tgt.Yaw = o.nav.Velocity()
	}

	dec := sess.Infer(st, tgt)

	o.monitor.CheckAttitude(st.Quat)

	if !dec.Absent() {
		o.monitor.CheckTorque(dec.TauRaw)
		o.handoff.Push(dec)
	}
	if o.recorder != nil {
		snap := robot.NewJointCommand(o.cfg.NumDOFs)
		if dec.Pos != nil {
			copy(snap.Q, dec.Pos)
		}
		o.recorder.Record(st, snap, dec.Tau)
	}
}

func (o *Orchestrator) inputTick() {
	o.target.Store(o.input.Read())
}
