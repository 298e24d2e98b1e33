// pkg/render/engo/scene_test.go
package engo

import (
	"testing"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/sim"
)

func newTestSimulation(t *testing.T) (*config.Config, *sim.Simulation) {
	t.Helper()
	cfg := config.DefaultConfig()
	simulation, err := sim.NewSimulation(cfg)
	if err != nil {
		t.Fatalf("failed to create simulation: %v", err)
	}
	return cfg, simulation
}

func TestNewTrajectoryScene(t *testing.T) {
	cfg, simulation := newTestSimulation(t)

	scene := NewTrajectoryScene(cfg, simulation)

	if scene == nil {
		t.Fatal("NewTrajectoryScene() returned nil")
	}
	if scene.cfg != cfg {
		t.Error("expected config to be set")
	}
	if scene.simulation != simulation {
		t.Error("expected simulation to be set")
	}
	if scene.world == nil {
		t.Error("expected world to be initialized")
	}
}

func TestTrajectoryScene_Type(t *testing.T) {
	cfg, simulation := newTestSimulation(t)
	scene := NewTrajectoryScene(cfg, simulation)

	if got := scene.Type(); got != "TrajectoryScene" {
		t.Errorf("Type() = %q, expected %q", got, "TrajectoryScene")
	}
}

// newBinaryStepSimulation uses a time step that is exact in float32 so
// frame-time conversions introduce no rounding.
func newBinaryStepSimulation(t *testing.T) *sim.Simulation {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Simulation.TimeStep = 0.03125
	cfg.Simulation.TraceInterval = 0.125
	simulation, err := sim.NewSimulation(cfg)
	if err != nil {
		t.Fatalf("failed to create simulation: %v", err)
	}
	return simulation
}

func TestStepSystem_FixedStepFromFrameTime(t *testing.T) {
	simulation := newBinaryStepSimulation(t)
	stepper := NewStepSystem(simulation)

	// Two and a half steps of frame time advance exactly two steps
	frame := float32(simulation.TimeStep * 2.5)
	stepper.Update(frame)

	if simulation.Tick != 2 {
		t.Errorf("tick after 2.5 steps of frame time = %d, expected 2", simulation.Tick)
	}

	// The leftover half step plus another half completes a third step
	stepper.Update(float32(simulation.TimeStep * 0.5))
	if simulation.Tick != 3 {
		t.Errorf("tick after carry-over = %d, expected 3", simulation.Tick)
	}
}

func TestStepSystem_ShortFrameDoesNotStep(t *testing.T) {
	simulation := newBinaryStepSimulation(t)
	stepper := NewStepSystem(simulation)

	stepper.Update(float32(simulation.TimeStep * 0.25))

	if simulation.Tick != 0 {
		t.Errorf("tick after quarter-step frame = %d, expected 0", simulation.Tick)
	}
}

func TestInputSystem_RelaunchRestartsTrajectory(t *testing.T) {
	cfg, simulation := newTestSimulation(t)
	input := NewInputSystem(cfg, simulation)

	for i := 0; i < 10; i++ {
		simulation.Advance()
	}
	moved := simulation.Projectile

	input.relaunch()

	launch, err := cfg.Projectile.Body()
	if err != nil {
		t.Fatalf("launch body: %v", err)
	}
	if simulation.Projectile != launch {
		t.Errorf("projectile after relaunch = %+v, expected launch state %+v", simulation.Projectile, launch)
	}
	if simulation.Projectile == moved {
		t.Error("relaunch left the projectile where it was")
	}
}
