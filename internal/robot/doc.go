// Package robot defines the shared data model of the motor-control core:
//
//   - [RobotState]: measured joint and IMU state, one snapshot per control tick
//   - [JointCommand]: per-joint actuation targets consumed by the downstream
//     PD loop; a persistent value that states mutate partially
//   - [ControlTarget]: operator velocity intent plus the requested behavior mode
//   - [Mode]: the behavior modes of the state machine
//
// It also declares the collaborator interfaces the core consumes
// ([SensorSource], [ActuatorSink], [ControlSource], [VelocitySource]).
// Transport, framing and device details live behind those interfaces and are
// out of scope here.
//
// # Command persistence
//
// JointCommand is deliberately not rebuilt per tick. Each behavior mode
// overwrites only the fields it owns and leaves the rest at their previous
// values, so a consumer always sees the last commanded value for every field.
package robot
