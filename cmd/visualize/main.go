// cmd/visualize/main.go
package main

import (
	"context"
	"flag"
	"os"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/logging"
	engorender "github.com/opd-ai/go-trajectory/pkg/render/engo"
	"github.com/opd-ai/go-trajectory/pkg/sim"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flag.Parse()

	var cfg *config.Config
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	simulation, err := sim.NewSimulation(cfg)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting visualization",
		"time_step", simulation.TimeStep,
		"trace_interval", simulation.TraceInterval,
	)

	engorender.SetupInputBindings()
	scene := engorender.NewTrajectoryScene(cfg, simulation)

	opts := engo.RunOptions{
		Title:      "Trajectory",
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
		VSync:      true,
	}

	engo.Run(opts, scene)
}
