// pkg/render/engo/scene.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/render"
	"github.com/opd-ai/go-trajectory/pkg/sim"
)

// TrajectoryScene runs a local simulation and draws its trajectory in
// an Engo window. Fixed-step physics decouples from the frame rate
// through an accumulator in the step system.
type TrajectoryScene struct {
	world *ecs.World

	cfg        *config.Config
	simulation *sim.Simulation

	renderer *EngoRenderer
	stepper  *StepSystem
	input    *InputSystem
}

// NewTrajectoryScene creates a scene around an existing simulation
func NewTrajectoryScene(cfg *config.Config, simulation *sim.Simulation) *TrajectoryScene {
	return &TrajectoryScene{
		cfg:        cfg,
		simulation: simulation,
		world:      &ecs.World{},
	}
}

// Type returns the scene type (required by Engo)
func (scene *TrajectoryScene) Type() string {
	return "TrajectoryScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *TrajectoryScene) Preload() {
	// Sprites are generated in Setup; nothing to preload from disk
}

// Setup is called when the scene starts (required by Engo)
func (scene *TrajectoryScene) Setup(u engo.Updater) {
	scene.world = &ecs.World{}
	scene.world.AddSystem(&common.MouseSystem{})

	scene.renderer = NewEngoRenderer(scene.world, scene.cfg.Render.Scale)
	if err := scene.renderer.Initialize(); err != nil {
		panic("failed to initialize renderer: " + err.Error())
	}

	// Route simulation events into the renderer
	render.Bind(scene.simulation.EventBus, scene.renderer)

	scene.stepper = NewStepSystem(scene.simulation)
	scene.world.AddSystem(scene.stepper)

	scene.input = NewInputSystem(scene.cfg, scene.simulation)
	scene.world.AddSystem(scene.input)

	// Draw the launch state before the first step
	scene.renderer.ResetTrajectory(scene.simulation.Projectile)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *TrajectoryScene) Exit() {}

// StepSystem advances the simulation at its fixed time step regardless
// of the frame rate. Frame time beyond one step carries over; a slow
// frame produces several steps, a fast one none.
type StepSystem struct {
	simulation  *sim.Simulation
	accumulator float64
}

// NewStepSystem creates a step system driving the given simulation
func NewStepSystem(simulation *sim.Simulation) *StepSystem {
	return &StepSystem{simulation: simulation}
}

// Remove satisfies the ecs.System interface
func (ss *StepSystem) Remove(basic ecs.BasicEntity) {}

// Update accumulates frame time and advances the simulation in fixed
// increments
func (ss *StepSystem) Update(dt float32) {
	ss.accumulator += float64(dt)
	for ss.accumulator >= ss.simulation.TimeStep {
		ss.simulation.Advance()
		ss.accumulator -= ss.simulation.TimeStep
	}
}
