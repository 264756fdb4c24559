package robot

// SensorSource supplies one state snapshot per control tick. Read must
// return well within the control period.
type SensorSource interface {
	Read() RobotState
}

// ActuatorSink consumes the joint command produced each control tick.
type ActuatorSink interface {
	Write(cmd *JointCommand)
}

// ControlSource is polled by the input task for the current operator intent.
type ControlSource interface {
	Read() ControlTarget
}

// VelocitySource supplies externally planned body velocities; it feeds the
// commands observation term while the machine is in navigation mode.
type VelocitySource interface {
	Velocity() (x, y, yaw float64)
}
