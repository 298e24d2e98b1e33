// pkg/sim/simulation.go
package sim

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/event"
)

// DefaultTimeStep is the fixed integration granularity used when no
// configuration overrides it: 60 steps per simulated second.
const DefaultTimeStep = 1.0 / 60.0

// Simulation is the single source of truth for one projectile run: elapsed
// time, the current body snapshot, and the tracer bookkeeping that decouples
// marker sampling from the integration step.
//
// A Simulation is owned by a single driving loop. It performs no I/O,
// spawns no goroutines, and holds no locks; running several projectiles
// concurrently means one Simulation per projectile.
type Simulation struct {
	TimeStep      float64
	TraceInterval float64
	Time          float64
	LastTracer    float64
	Projectile    entity.Body
	Tick          uint64

	EventBus *event.Bus

	forces       entity.ForceModel
	sampler      *TracerSampler
	sessionSteps uint64
}

// NewSimulation builds a simulation from a validated configuration. The
// initial trajectory session starts immediately; subscribe to the event bus
// and call Reset to begin a throw with visible events.
func NewSimulation(cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	body, err := cfg.Projectile.Body()
	if err != nil {
		return nil, fmt.Errorf("invalid projectile config: %w", err)
	}

	sampler, err := NewTracerSampler(cfg.Simulation.TraceInterval, cfg.Simulation.TimeStep, 0)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		TimeStep:      cfg.Simulation.TimeStep,
		TraceInterval: cfg.Simulation.TraceInterval,
		Projectile:    body,
		EventBus:      event.NewEventBus(),
		forces:        cfg.Forces.ForceModel(),
		sampler:       sampler,
	}, nil
}

// Reset begins a new trajectory session from the given body: the tracer
// schedule restarts at the current time, subscribers are told to discard
// the drawn trajectory, and one immediate sample is emitted at the body's
// center.
func (s *Simulation) Reset(body entity.Body) error {
	if err := body.Validate(); err != nil {
		return fmt.Errorf("cannot reset to invalid body: %w", err)
	}

	sampler, err := NewTracerSampler(s.TraceInterval, s.TimeStep, 0)
	if err != nil {
		return err
	}

	s.LastTracer = s.Time
	s.sampler = sampler
	s.sessionSteps = 0
	s.Projectile = body

	s.EventBus.Publish(event.NewBodyEvent(event.TrajectoryReset, s, body, s.Tick))
	s.EventBus.Publish(event.NewTracerEvent(s, body.Center(), s.Tick))
	return nil
}

// Advance runs one integration step: the body moves by exactly TimeStep,
// every tracer instant inside the step is emitted at its interpolated
// position, then the new body snapshot is committed and published.
func (s *Simulation) Advance() {
	before := s.Projectile
	next, delta := entity.Step(before, s.forces, s.TimeStep)

	s.Tick++
	s.Time += s.TimeStep
	s.sessionSteps++

	elapsed := float64(s.sessionSteps) * s.TimeStep
	for _, point := range s.sampler.Sample(before, delta, elapsed) {
		s.EventBus.Publish(event.NewTracerEvent(s, point, s.Tick))
	}

	s.Projectile = next
	s.EventBus.Publish(event.NewBodyEvent(event.BodyUpdated, s, next, s.Tick))
}

// Run advances the simulation the given number of steps, stopping early if
// the context is canceled. A non-positive step count runs until cancellation.
// Start and end are announced on the event bus.
func (s *Simulation) Run(ctx context.Context, steps int) error {
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationStarted, Source: s})
	defer s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationEnded, Source: s})

	for i := 0; steps <= 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Advance()
	}
	return nil
}

// State returns a copy of the externally observable simulation state
func (s *Simulation) State() State {
	return State{
		Tick: s.Tick,
		Time: s.Time,
		Body: s.Projectile,
	}
}
