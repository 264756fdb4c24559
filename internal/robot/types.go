package robot

// Mode is a behavior mode of the state machine.
type Mode int

const (
	ModeIdle Mode = iota
	ModeStandUp
	ModeSitDown
	ModeLocomotion
	ModeNavigation
	ModeClimb // reserved in the transition table, no behavior yet
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeStandUp:
		return "stand_up"
	case ModeSitDown:
		return "sit_down"
	case ModeLocomotion:
		return "locomotion"
	case ModeNavigation:
		return "navigation"
	case ModeClimb:
		return "climb"
	}
	return "unknown"
}

// Learned reports whether the mode runs a learned policy.
func (m Mode) Learned() bool {
	return m == ModeLocomotion || m == ModeNavigation
}

// RobotState is one measured snapshot of the robot. Q, DQ and TauEst hold one
// entry per DOF. Quat stores the base orientation in the scalar ordering of
// the deployment's configured convention; Gyro is the angular velocity.
type RobotState struct {
	Q      []float64
	DQ     []float64
	TauEst []float64
	Quat   [4]float64
	Gyro   [3]float64
}

// NewRobotState returns a zero state for n DOFs.
func NewRobotState(n int) RobotState {
	return RobotState{
		Q:      make([]float64, n),
		DQ:     make([]float64, n),
		TauEst: make([]float64, n),
	}
}

// Clone returns a deep copy, so readers on another task never observe a torn
// snapshot.
func (s RobotState) Clone() RobotState {
	c := s
	c.Q = append([]float64(nil), s.Q...)
	c.DQ = append([]float64(nil), s.DQ...)
	c.TauEst = append([]float64(nil), s.TauEst...)
	return c
}

// JointCommand carries per-DOF actuation targets: position, velocity, PD
// gains and feed-forward torque. See the package doc for the persistence
// contract.
type JointCommand struct {
	Q   []float64
	DQ  []float64
	Kp  []float64
	Kd  []float64
	Tau []float64
}

// NewJointCommand allocates a zero command for n DOFs. Callers create it once
// and mutate it in place tick after tick.
func NewJointCommand(n int) *JointCommand {
	return &JointCommand{
		Q:   make([]float64, n),
		DQ:  make([]float64, n),
		Kp:  make([]float64, n),
		Kd:  make([]float64, n),
		Tau: make([]float64, n),
	}
}

// Clone returns a deep copy of the command.
func (c *JointCommand) Clone() *JointCommand {
	return &JointCommand{
		Q:   append([]float64(nil), c.Q...),
		DQ:  append([]float64(nil), c.DQ...),
		Kp:  append([]float64(nil), c.Kp...),
		Kd:  append([]float64(nil), c.Kd...),
		Tau: append([]float64(nil), c.Tau...),
	}
}

// ControlTarget is the operator intent: commanded body velocities (forward X,
// lateral Y, yaw rate) and the requested behavior mode. It is exchanged as a
// whole value between tasks, never field by field.
type ControlTarget struct {
	X    float64
	Y    float64
	Yaw  float64
	Mode Mode
}
