// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
	"github.com/opd-ai/go-trajectory/pkg/validation"
)

// Config contains the full configuration for a trajectory run
type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Forces     ForceConfig      `json:"forces"`
	Projectile ProjectileConfig `json:"projectile"`
	Render     RenderConfig     `json:"render"`
	Feed       FeedConfig       `json:"feed"`
}

// SimulationConfig contains the two cadences the simulator runs on. The
// time step is the fixed integration granularity; the trace interval is the
// independent sampling cadence for trajectory markers. Both are in seconds
// and both must be strictly positive.
type SimulationConfig struct {
	TimeStep      float64 `json:"timeStep"`
	TraceInterval float64 `json:"traceInterval"`
}

// ForceConfig contains the force model parameters
type ForceConfig struct {
	GravityX float64 `json:"gravityX"`
	GravityY float64 `json:"gravityY"`
	Drag     float64 `json:"drag"`
}

// ProjectileConfig contains the initial body and its launch parameters.
// The launch velocity is given as speed plus elevation angle in degrees.
type ProjectileConfig struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Speed    float64 `json:"speed"`
	AngleDeg float64 `json:"angleDeg"`
}

// RenderConfig contains settings for the ASCII and windowed renderers
type RenderConfig struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

// FeedConfig contains settings for the read-only trajectory feed
type FeedConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	MaxViewers int    `json:"maxViewers"`
}

// ForceModel builds the configured force model. A zero drag coefficient
// yields plain constant gravity.
func (fc ForceConfig) ForceModel() entity.ForceModel {
	field := physics.Vector2D{X: fc.GravityX, Y: fc.GravityY}
	if fc.Drag == 0 {
		return entity.Gravity{Field: field}
	}
	return entity.GravityDrag{Field: field, Drag: fc.Drag}
}

// Body builds the initial projectile body from the launch parameters
func (pc ProjectileConfig) Body() (entity.Body, error) {
	velocity := physics.FromAngle(pc.AngleDeg*math.Pi/180, pc.Speed)
	return entity.NewBody(
		physics.Vector2D{X: pc.X, Y: pc.Y},
		velocity,
		pc.Width,
		pc.Height,
	)
}

// Validate checks the configuration invariants fail-fast
func (c *Config) Validate() error {
	if err := validation.PositiveDuration("simulation.timeStep", c.Simulation.TimeStep); err != nil {
		return err
	}
	if err := validation.PositiveDuration("simulation.traceInterval", c.Simulation.TraceInterval); err != nil {
		return err
	}
	if err := validation.Finite("forces.gravityX", c.Forces.GravityX); err != nil {
		return err
	}
	if err := validation.Finite("forces.gravityY", c.Forces.GravityY); err != nil {
		return err
	}
	if err := validation.NonNegative("forces.drag", c.Forces.Drag); err != nil {
		return err
	}
	if err := validation.NonNegative("projectile.width", c.Projectile.Width); err != nil {
		return err
	}
	if err := validation.NonNegative("projectile.height", c.Projectile.Height); err != nil {
		return err
	}
	if _, err := c.Projectile.Body(); err != nil {
		return fmt.Errorf("invalid projectile: %w", err)
	}
	if c.Feed.Enabled && c.Feed.MaxViewers <= 0 {
		return fmt.Errorf("feed.maxViewers must be positive when the feed is enabled, got %d", c.Feed.MaxViewers)
	}
	return nil
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default configuration: a 60 Hz integration step,
// trajectory markers every 100 ms, standard gravity, and a 45 degree launch
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TimeStep:      1.0 / 60.0,
			TraceInterval: 0.1,
		},
		Forces: ForceConfig{
			GravityX: 0,
			GravityY: -entity.StandardGravity,
			Drag:     0,
		},
		Projectile: ProjectileConfig{
			X:        0,
			Y:        0,
			Width:    1,
			Height:   0.5,
			Speed:    40,
			AngleDeg: 45,
		},
		Render: RenderConfig{
			Width:  100,
			Height: 30,
			Scale:  2,
		},
		Feed: FeedConfig{
			Enabled:    false,
			Address:    "localhost:4590",
			MaxViewers: 16,
		},
	}
}
