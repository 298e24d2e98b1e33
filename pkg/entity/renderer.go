// pkg/entity/renderer.go
package entity

import (
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// Renderer is the contract between the numeric core and any visualization
// collaborator. The simulation calls these methods in time order; renderers
// only ever consume finished positions and never influence the integration.
type Renderer interface {
	// Clear prepares the drawing surface for a new frame
	Clear()
	// Present flushes the current frame to the output device
	Present()
	// RenderBody draws the projectile at its current position, once per
	// integration step
	RenderBody(b Body)
	// RenderTracer draws one sampled trajectory marker
	RenderTracer(position physics.Vector2D)
	// ResetTrajectory discards any drawn trajectory and starts a new one
	// from the given body
	ResetTrajectory(b Body)
}
