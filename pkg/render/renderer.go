// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/logging"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// NullRenderer is a simple implementation of entity.Renderer that logs
// every callback at debug level. Useful for headless runs and tests.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{
		logger: logging.NewLogger(),
	}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderBody implements entity.Renderer.
func (d *NullRenderer) RenderBody(b entity.Body) {
	d.logger.Debug(context.Background(), "RenderBody called",
		"position_x", b.Position.X,
		"position_y", b.Position.Y,
		"velocity_x", b.Velocity.X,
		"velocity_y", b.Velocity.Y,
	)
}

// RenderTracer implements entity.Renderer.
func (d *NullRenderer) RenderTracer(position physics.Vector2D) {
	d.logger.Debug(context.Background(), "RenderTracer called",
		"x", position.X,
		"y", position.Y,
	)
}

// ResetTrajectory implements entity.Renderer.
func (d *NullRenderer) ResetTrajectory(b entity.Body) {
	d.logger.Debug(context.Background(), "ResetTrajectory called",
		"position_x", b.Position.X,
		"position_y", b.Position.Y,
	)
}
