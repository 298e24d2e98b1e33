// pkg/entity/force.go
package entity

import (
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// ForceModel computes the acceleration acting on a body. Implementations
// must be pure functions of the body's current state so that integration
// stays deterministic and reproducible.
type ForceModel interface {
	Acceleration(b Body) physics.Vector2D
}

// StandardGravity is the conventional gravitational acceleration in m/s^2,
// pointing down the Y axis when used with DefaultGravity.
const StandardGravity = 9.80665

// Gravity is a constant uniform force field
type Gravity struct {
	Field physics.Vector2D
}

// DefaultGravity returns a gravity model pulling down the Y axis at
// standard strength
func DefaultGravity() Gravity {
	return Gravity{Field: physics.Vector2D{Y: -StandardGravity}}
}

// Acceleration implements ForceModel
func (g Gravity) Acceleration(Body) physics.Vector2D {
	return g.Field
}

// GravityDrag combines a constant gravity field with drag proportional to
// velocity. A zero drag coefficient degenerates to plain gravity.
type GravityDrag struct {
	Field physics.Vector2D
	Drag  float64
}

// Acceleration implements ForceModel
func (g GravityDrag) Acceleration(b Body) physics.Vector2D {
	return g.Field.Sub(b.Velocity.Scale(g.Drag))
}
