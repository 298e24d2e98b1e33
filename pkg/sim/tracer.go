// pkg/sim/tracer.go
package sim

import (
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
	"github.com/opd-ai/go-trajectory/pkg/validation"
)

// TracerSampler extracts trajectory markers at a fixed interval from a
// simulation integrating at a different fixed step. The two cadences are
// incommensurate in general: zero, one, or several tracer instants can fall
// inside a single integration step, and each must be placed at its exact
// sub-step position by interpolating along the step's position delta.
//
// A sampler lives for one trajectory session (from one tracer reset to the
// next). It keeps a session clock starting at its construction time and two
// pieces of running state: how many tracer instants have been scheduled and
// when the next one is due on that clock.
type TracerSampler struct {
	traceInterval float64
	timeStep      float64
	sinceLast     float64
	count         int
	next          float64
}

// NewTracerSampler creates a sampler for a new trajectory session.
// timeSinceLastTracer is how far the session clock already is past the last
// tracer reset when the sampler is constructed; it is zero when the session
// starts at a reset. Non-positive cadences are configuration errors and are
// rejected here rather than producing silently wrong interpolation.
func NewTracerSampler(traceInterval, timeStep, timeSinceLastTracer float64) (*TracerSampler, error) {
	if err := validation.PositiveDuration("traceInterval", traceInterval); err != nil {
		return nil, err
	}
	if err := validation.PositiveDuration("timeStep", timeStep); err != nil {
		return nil, err
	}
	if err := validation.NonNegative("timeSinceLastTracer", timeSinceLastTracer); err != nil {
		return nil, err
	}

	return &TracerSampler{
		traceInterval: traceInterval,
		timeStep:      timeStep,
		sinceLast:     timeSinceLastTracer,
		count:         1,
		next:          traceInterval - timeSinceLastTracer,
	}, nil
}

// Sample evaluates one integration step and returns every tracer marker
// that falls inside it, in time order. bodyBefore and delta are the body at
// the start of the step and the position displacement the step applied;
// elapsed is the session-clock time at the end of the step.
//
// Each firing interpolates independently along the same delta:
//
//	alpha = (timeStep - (elapsed - next)) / timeStep
//
// maps how far past the scheduled instant the step ended into a fraction of
// the step's displacement. Because the displacement of a fixed-step Euler
// update is linear in time, this is exact position interpolation, not an
// approximation. A step that spans several tracer intervals fires once per
// instant; none are skipped.
func (s *TracerSampler) Sample(bodyBefore entity.Body, delta physics.Vector2D, elapsed float64) []physics.Vector2D {
	var points []physics.Vector2D

	center := bodyBefore.Center()
	for elapsed >= s.next {
		alpha := (s.timeStep - (elapsed - s.next)) / s.timeStep
		points = append(points, center.AddScaled(delta, alpha))

		s.count++
		s.next = s.traceInterval*float64(s.count) - s.sinceLast
	}

	return points
}

// Count returns how many tracer instants have been scheduled so far in this
// session, including the initial one
func (s *TracerSampler) Count() int {
	return s.count
}
