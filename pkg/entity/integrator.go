// pkg/entity/integrator.go
package entity

import (
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// Step advances a body by one fixed time step under the given force model
// and returns the new body together with the position delta applied during
// the step. The delta is part of the contract: samplers interpolate along
// it directly instead of recomputing it from two absolute positions.
//
// Step is a pure function. It holds no shared state and is safe to call
// from any number of independent simulations without synchronization.
// Behavior for non-finite inputs is the caller's problem; finite inputs
// always succeed.
func Step(b Body, forces ForceModel, deltaTime float64) (Body, physics.Vector2D) {
	state := physics.KinematicState{
		Position: b.Position,
		Velocity: b.Velocity,
	}

	next, delta := physics.IntegrateEuler(state, forces.Acceleration(b), deltaTime)

	return Body{
		Position: next.Position,
		Velocity: next.Velocity,
		Width:    b.Width,
		Height:   b.Height,
	}, delta
}
