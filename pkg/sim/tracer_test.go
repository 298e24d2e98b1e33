// pkg/sim/tracer_test.go
package sim

import (
	"math"
	"testing"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

const tolerance = 1e-9

func TestNewTracerSampler_Validation(t *testing.T) {
	tests := []struct {
		name      string
		interval  float64
		timeStep  float64
		sinceLast float64
		wantErr   bool
	}{
		{name: "valid", interval: 0.1, timeStep: 1.0 / 60.0, sinceLast: 0, wantErr: false},
		{name: "valid_with_offset", interval: 0.5, timeStep: 0.2, sinceLast: 0.4, wantErr: false},
		{name: "zero_interval", interval: 0, timeStep: 0.1, wantErr: true},
		{name: "negative_interval", interval: -0.1, timeStep: 0.1, wantErr: true},
		{name: "zero_time_step", interval: 0.1, timeStep: 0, wantErr: true},
		{name: "nan_interval", interval: math.NaN(), timeStep: 0.1, wantErr: true},
		{name: "negative_offset", interval: 0.1, timeStep: 0.1, sinceLast: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTracerSampler(tt.interval, tt.timeStep, tt.sinceLast)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTracerSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracerSampler_EqualCadenceFiresOncePerStepAtBoundary(t *testing.T) {
	const dt = 1.0 / 60.0
	sampler, err := NewTracerSampler(dt, dt, 0)
	if err != nil {
		t.Fatal(err)
	}

	body := entity.Body{
		Position: physics.Vector2D{X: 0, Y: 0},
		Width:    2,
		Height:   2,
	}
	delta := physics.Vector2D{X: 1, Y: -0.5}

	for step := 1; step <= 10; step++ {
		points := sampler.Sample(body, delta, float64(step)*dt)
		if len(points) != 1 {
			t.Fatalf("step %d: got %d tracers, expected exactly 1", step, len(points))
		}
		// alpha = 1: marker sits at the step's end point
		want := body.Center().Add(delta)
		if points[0] != want {
			t.Errorf("step %d: tracer at %v, expected step boundary %v", step, points[0], want)
		}
	}
}

func TestTracerSampler_ThirdIntervalFiresThreePerStep(t *testing.T) {
	// 0.375 and 0.125 are exact binary fractions, so the schedule hits the
	// step boundary exactly.
	const dt = 0.375
	const interval = dt / 3

	sampler, err := NewTracerSampler(interval, dt, 0)
	if err != nil {
		t.Fatal(err)
	}

	body := entity.Body{Position: physics.Vector2D{X: 0, Y: 0}}
	delta := physics.Vector2D{X: 9, Y: 3}

	points := sampler.Sample(body, delta, dt)
	if len(points) != 3 {
		t.Fatalf("got %d tracers, expected 3", len(points))
	}

	for i, wantAlpha := range []float64{1.0 / 3.0, 2.0 / 3.0, 1} {
		gotAlpha := (points[i].X - body.Center().X) / delta.X
		if math.Abs(gotAlpha-wantAlpha) > tolerance {
			t.Errorf("tracer %d: alpha = %v, expected %v", i, gotAlpha, wantAlpha)
		}
	}
}

func TestTracerSampler_StepSpanningSeveralIntervalsSkipsNone(t *testing.T) {
	// One integration step covers three and a half tracer intervals. Each
	// instant must fire with its own alpha, interpolated along the same
	// step delta.
	const dt = 0.35
	const interval = 0.1

	sampler, err := NewTracerSampler(interval, dt, 0)
	if err != nil {
		t.Fatal(err)
	}

	body := entity.Body{Position: physics.Vector2D{X: 10, Y: 20}, Width: 2, Height: 4}
	delta := physics.Vector2D{X: 7, Y: -14}

	points := sampler.Sample(body, delta, dt)
	if len(points) != 3 {
		t.Fatalf("got %d tracers, expected 3", len(points))
	}

	center := body.Center()
	for i, instant := range []float64{0.1, 0.2, 0.3} {
		alpha := instant / dt
		want := center.AddScaled(delta, alpha)
		if points[i].Distance(want) > tolerance {
			t.Errorf("tracer %d: at %v, expected %v (alpha %v)", i, points[i], want, alpha)
		}
	}
}

func TestTracerSampler_CoarseIntervalFiresNothing(t *testing.T) {
	const dt = 1.0 / 60.0
	sampler, err := NewTracerSampler(10, dt, 0)
	if err != nil {
		t.Fatal(err)
	}

	body := entity.Body{}
	delta := physics.Vector2D{X: 1}

	for step := 1; step <= 60; step++ {
		if points := sampler.Sample(body, delta, float64(step)*dt); len(points) != 0 {
			t.Fatalf("step %d: got %d tracers, expected none within the first second", step, len(points))
		}
	}
}

func TestTracerSampler_ConstructionOffsetShiftsSchedule(t *testing.T) {
	// The session is already 0.4s past the last tracer when the sampler is
	// built, so with a 0.5s interval the first instant is due 0.1s in.
	sampler, err := NewTracerSampler(0.5, 0.2, 0.4)
	if err != nil {
		t.Fatal(err)
	}

	body := entity.Body{}
	delta := physics.Vector2D{X: 2}

	points := sampler.Sample(body, delta, 0.2)
	if len(points) != 1 {
		t.Fatalf("got %d tracers, expected 1 in the first step", len(points))
	}
	// Instant at 0.1 into a 0.2 step: alpha = 0.5
	want := body.Center().AddScaled(delta, 0.5)
	if points[0].Distance(want) > tolerance {
		t.Errorf("tracer at %v, expected %v", points[0], want)
	}

	if points = sampler.Sample(body, delta, 0.4); len(points) != 0 {
		t.Fatalf("second step should be quiet, got %d tracers", len(points))
	}

	points = sampler.Sample(body, delta, 0.6)
	if len(points) != 1 {
		t.Fatalf("third step should fire once, got %d tracers", len(points))
	}
	// Instant at 0.6 is the step's end: alpha = 1
	want = body.Center().Add(delta)
	if points[0].Distance(want) > tolerance {
		t.Errorf("tracer at %v, expected %v", points[0], want)
	}
}

func TestTracerSampler_CountAdvancesPerFiring(t *testing.T) {
	sampler, err := NewTracerSampler(0.1, 0.35, 0)
	if err != nil {
		t.Fatal(err)
	}
	if sampler.Count() != 1 {
		t.Fatalf("initial count = %d, expected 1", sampler.Count())
	}

	sampler.Sample(entity.Body{}, physics.Vector2D{X: 1}, 0.35)
	if sampler.Count() != 4 {
		t.Errorf("count after three firings = %d, expected 4", sampler.Count())
	}
}
