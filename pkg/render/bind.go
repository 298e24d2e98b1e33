// pkg/render/bind.go
package render

import (
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/event"
)

// Bind subscribes a renderer to a simulation's event bus. Publishing is
// synchronous, so the renderer sees trajectory resets, tracer samples, and
// body updates exactly in the order the simulation produced them.
func Bind(bus *event.Bus, r entity.Renderer) {
	bus.Subscribe(event.TrajectoryReset, func(e event.Event) {
		r.ResetTrajectory(e.(*event.BodyEvent).Body)
	})
	bus.Subscribe(event.TracerSampled, func(e event.Event) {
		r.RenderTracer(e.(*event.TracerEvent).Position)
	})
	bus.Subscribe(event.BodyUpdated, func(e event.Event) {
		r.RenderBody(e.(*event.BodyEvent).Body)
	})
}
