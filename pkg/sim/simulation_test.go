// pkg/sim/simulation_test.go
package sim

import (
	"context"
	"testing"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/event"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// recorder collects every trajectory event in arrival order
type recorder struct {
	tracers []physics.Vector2D
	bodies  []entity.Body
	resets  []entity.Body
}

func record(bus *event.Bus) *recorder {
	r := &recorder{}
	bus.Subscribe(event.TracerSampled, func(e event.Event) {
		r.tracers = append(r.tracers, e.(*event.TracerEvent).Position)
	})
	bus.Subscribe(event.BodyUpdated, func(e event.Event) {
		r.bodies = append(r.bodies, e.(*event.BodyEvent).Body)
	})
	bus.Subscribe(event.TrajectoryReset, func(e event.Event) {
		r.resets = append(r.resets, e.(*event.BodyEvent).Body)
	})
	return r
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Simulation.TimeStep = 1.0 / 60.0
	cfg.Simulation.TraceInterval = 1.0 / 60.0
	return cfg
}

func TestNewSimulation_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TraceInterval = 0
	if _, err := NewSimulation(cfg); err == nil {
		t.Error("expected error for zero trace interval")
	}

	cfg = testConfig()
	cfg.Simulation.TimeStep = -1
	if _, err := NewSimulation(cfg); err == nil {
		t.Error("expected error for negative time step")
	}
}

func TestAdvance_TimeAndTickProgress(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 10; i++ {
		s.Advance()
		if s.Tick != uint64(i) {
			t.Fatalf("tick = %d, expected %d", s.Tick, i)
		}
	}
	if s.Time <= 0 || s.Time < 9*s.TimeStep {
		t.Errorf("time = %v after 10 steps of %v", s.Time, s.TimeStep)
	}
}

func TestAdvance_EqualCadenceEmitsOneTracerPerStep(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := record(s.EventBus)

	const steps = 30
	for i := 0; i < steps; i++ {
		s.Advance()
	}

	if len(rec.tracers) != steps {
		t.Fatalf("got %d tracers over %d steps, expected one per step", len(rec.tracers), steps)
	}
	if len(rec.bodies) != steps {
		t.Fatalf("got %d body updates, expected %d", len(rec.bodies), steps)
	}

	// With the cadences equal every marker sits on a step boundary, which
	// is the committed body's center.
	for i := range rec.tracers {
		if rec.tracers[i].Distance(rec.bodies[i].Center()) > tolerance {
			t.Errorf("step %d: tracer %v, expected body center %v",
				i+1, rec.tracers[i], rec.bodies[i].Center())
		}
	}
}

func TestAdvance_ThirdIntervalEmitsThreeTracersPerStep(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TimeStep = 0.375
	cfg.Simulation.TraceInterval = 0.125

	s, err := NewSimulation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := record(s.EventBus)

	for i := 0; i < 4; i++ {
		s.Advance()
	}

	if len(rec.tracers) != 12 {
		t.Errorf("got %d tracers over 4 steps, expected 3 per step", len(rec.tracers))
	}
}

func TestAdvance_CoarseIntervalEmitsNoTracer(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TraceInterval = 10 // longer than the whole run

	s, err := NewSimulation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := record(s.EventBus)

	for i := 0; i < 60; i++ {
		s.Advance()
	}

	if len(rec.tracers) != 0 {
		t.Errorf("got %d tracers, expected none for an interval beyond the run", len(rec.tracers))
	}
}

func TestReset_EmitsOneImmediateSampleAtCenter(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := record(s.EventBus)

	body, err := entity.NewBody(
		physics.Vector2D{X: 5, Y: 10},
		physics.Vector2D{X: 20, Y: 20},
		2, 4,
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(body); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	if len(rec.resets) != 1 {
		t.Fatalf("got %d reset events, expected 1", len(rec.resets))
	}
	if len(rec.tracers) != 1 {
		t.Fatalf("got %d tracers, expected exactly the immediate one", len(rec.tracers))
	}
	if rec.tracers[0] != body.Center() {
		t.Errorf("immediate tracer at %v, expected center %v", rec.tracers[0], body.Center())
	}
}

func TestReset_RestartsTracerSchedule(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Advance partway into the first session, then reset mid-flight.
	for i := 0; i < 7; i++ {
		s.Advance()
	}
	if err := s.Reset(s.Projectile); err != nil {
		t.Fatal(err)
	}

	rec := record(s.EventBus)
	const steps = 12
	for i := 0; i < steps; i++ {
		s.Advance()
	}

	// Cadence equals the step, so the restarted schedule fires once per
	// step starting from the reset instant.
	if len(rec.tracers) != steps {
		t.Errorf("got %d tracers after reset, expected %d", len(rec.tracers), steps)
	}
}

func TestReset_RejectsInvalidBody(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	bad := entity.Body{Width: -1}
	if err := s.Reset(bad); err == nil {
		t.Error("expected error resetting to a body with negative extent")
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TraceInterval = 0.1
	cfg.Forces.Drag = 0.05

	run := func() ([]entity.Body, []physics.Vector2D) {
		s, err := NewSimulation(cfg)
		if err != nil {
			t.Fatal(err)
		}
		rec := record(s.EventBus)
		for i := 0; i < 500; i++ {
			s.Advance()
		}
		return rec.bodies, rec.tracers
	}

	bodiesA, tracersA := run()
	bodiesB, tracersB := run()

	if len(bodiesA) != len(bodiesB) || len(tracersA) != len(tracersB) {
		t.Fatalf("run lengths differ: %d/%d bodies, %d/%d tracers",
			len(bodiesA), len(bodiesB), len(tracersA), len(tracersB))
	}
	for i := range bodiesA {
		if bodiesA[i] != bodiesB[i] {
			t.Fatalf("body %d differs: %v vs %v", i, bodiesA[i], bodiesB[i])
		}
	}
	for i := range tracersA {
		if tracersA[i] != tracersB[i] {
			t.Fatalf("tracer %d differs: %v vs %v", i, tracersA[i], tracersB[i])
		}
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, 1000); err == nil {
		t.Error("expected context error from canceled run")
	}
	if s.Tick != 0 {
		t.Errorf("tick = %d, expected no steps after immediate cancel", s.Tick)
	}
}

func TestRun_CompletesRequestedSteps(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Run(context.Background(), 120); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if s.Tick != 120 {
		t.Errorf("tick = %d, expected 120", s.Tick)
	}
}

func TestState_Snapshot(t *testing.T) {
	s, err := NewSimulation(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	s.Advance()

	state := s.State()
	if state.Tick != s.Tick || state.Body != s.Projectile {
		t.Errorf("State() = %+v, expected tick %d body %v", state, s.Tick, s.Projectile)
	}
}
