// pkg/render/engo/input.go
package engo

import (
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/sim"
)

// InputSystem handles keyboard input for the visualization window
type InputSystem struct {
	cfg        *config.Config
	simulation *sim.Simulation

	// Debounce so a held key does not relaunch every frame
	lastRelaunch  time.Time
	relaunchDelay time.Duration
}

// NewInputSystem creates a new input system
func NewInputSystem(cfg *config.Config, simulation *sim.Simulation) *InputSystem {
	return &InputSystem{
		cfg:           cfg,
		simulation:    simulation,
		relaunchDelay: 200 * time.Millisecond,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update processes input and applies it to the simulation
func (is *InputSystem) Update(dt float32) {
	if engo.Input.Button("quit").JustPressed() {
		engo.Exit()
		return
	}

	if engo.Input.Button("relaunch").JustPressed() {
		if time.Since(is.lastRelaunch) >= is.relaunchDelay {
			is.relaunch()
			is.lastRelaunch = time.Now()
		}
	}
}

// relaunch rebuilds the launch body from configuration and restarts
// the trajectory
func (is *InputSystem) relaunch() {
	body, err := is.cfg.Projectile.Body()
	if err != nil {
		return
	}
	_ = is.simulation.Reset(body)
}

// SetupInputBindings sets up the key bindings for the visualization
func SetupInputBindings() {
	engo.Input.RegisterButton("relaunch", engo.KeySpace, engo.KeyR)
	engo.Input.RegisterButton("quit", engo.KeyEscape, engo.KeyQ)
}
