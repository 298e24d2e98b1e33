// pkg/entity/body.go
package entity

import (
	"fmt"

	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// Body is the simulated rectangular projectile. Position is the bottom-left
// corner of the rectangle; the geometric center derives from the extent.
// A Body is an immutable snapshot: every integration step produces a new
// value rather than mutating the previous one.
type Body struct {
	Position physics.Vector2D `json:"position"`
	Velocity physics.Vector2D `json:"velocity"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
}

// NewBody creates a body at the given bottom-left corner with the given
// extent and launch velocity. Width and height must be non-negative.
func NewBody(position, velocity physics.Vector2D, width, height float64) (Body, error) {
	b := Body{
		Position: position,
		Velocity: velocity,
		Width:    width,
		Height:   height,
	}
	if err := b.Validate(); err != nil {
		return Body{}, err
	}
	return b, nil
}

// Center returns the geometric center of the body rectangle
func (b Body) Center() physics.Vector2D {
	return b.Position.Add(physics.Vector2D{X: b.Width / 2, Y: b.Height / 2})
}

// Validate checks the body invariants: non-negative extent and finite
// position and velocity
func (b Body) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("body extent must be non-negative: width=%v height=%v", b.Width, b.Height)
	}
	if !b.Position.IsFinite() {
		return fmt.Errorf("body position must be finite: %v", b.Position)
	}
	if !b.Velocity.IsFinite() {
		return fmt.Errorf("body velocity must be finite: %v", b.Velocity)
	}
	return nil
}
