// pkg/physics/motion.go
package physics

// KinematicState tracks the moving point a rigid body is integrated through
type KinematicState struct {
	Position Vector2D
	Velocity Vector2D
}

// IntegrateEuler advances a kinematic state by one fixed step using
// semi-implicit Euler: velocity is updated from the acceleration first,
// then the position moves along the updated velocity. The scheme is
// deterministic; identical inputs yield bit-identical outputs.
//
// The returned delta is the exact position displacement of this step.
// Callers that interpolate inside the step must use this delta rather than
// subtracting two absolute positions, which cancels catastrophically at
// high velocities.
func IntegrateEuler(state KinematicState, acceleration Vector2D, deltaTime float64) (KinematicState, Vector2D) {
	velocity := state.Velocity.Add(acceleration.Scale(deltaTime))
	delta := velocity.Scale(deltaTime)

	return KinematicState{
		Position: state.Position.Add(delta),
		Velocity: velocity,
	}, delta
}
