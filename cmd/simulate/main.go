// cmd/simulate/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/health"
	"github.com/opd-ai/go-trajectory/pkg/logging"
	"github.com/opd-ai/go-trajectory/pkg/network"
	"github.com/opd-ai/go-trajectory/pkg/render"
	"github.com/opd-ai/go-trajectory/pkg/sim"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	printSchema := flag.Bool("schema", false, "Print configuration JSON schema and exit")
	steps := flag.Int("steps", 600, "Number of steps to simulate (0 runs until interrupted)")
	renderMode := flag.String("render", "ascii", "Renderer: ascii or none")
	serveFeed := flag.Bool("feed", false, "Publish the trajectory feed even if disabled in config")
	flag.Parse()

	if *printSchema {
		schema, err := config.Schema()
		if err != nil {
			logger.Error(ctx, "Failed to generate configuration schema", err)
			os.Exit(1)
		}
		fmt.Println(string(schema))
		return
	}

	if *createDefault {
		defaultConfig := config.DefaultConfig()
		if err := config.SaveConfig(defaultConfig, *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg := loadConfig(ctx, logger, *configPath)

	simulation, err := sim.NewSimulation(cfg)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	var renderer entity.Renderer
	switch *renderMode {
	case "ascii":
		terminal := render.NewTerminalRenderer(cfg.Render.Width, cfg.Render.Height, cfg.Render.Scale)
		terminal.SetCenter(simulation.Projectile.Center())
		renderer = terminal
	case "none":
		renderer = render.NewNullRenderer()
	default:
		logger.Error(ctx, "Unknown render mode", nil, "render", *renderMode)
		os.Exit(1)
	}
	render.Bind(simulation.EventBus, renderer)
	renderer.ResetTrajectory(simulation.Projectile)

	// Optional trajectory feed with health probes
	var feedServer *network.FeedServer
	if cfg.Feed.Enabled || *serveFeed {
		feedServer = network.NewFeedServer(simulation, cfg.Feed.MaxViewers)
		if err := feedServer.Start(cfg.Feed.Address); err != nil {
			logger.Error(ctx, "Failed to start feed server", err,
				"address", cfg.Feed.Address,
			)
			os.Exit(1)
		}
		defer feedServer.Stop()

		healthServer := startHealthServer(ctx, logger, simulation, feedServer)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			healthServer.Shutdown(shutdownCtx)
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info(ctx, "Shutting down")
		cancel()
	}()

	logger.Info(ctx, "Starting simulation",
		"time_step", simulation.TimeStep,
		"trace_interval", simulation.TraceInterval,
		"steps", *steps,
	)

	if *renderMode == "ascii" {
		runPaced(runCtx, simulation, renderer, *steps)
	} else {
		if err := simulation.Run(runCtx, *steps); err != nil {
			logger.Info(ctx, "Simulation interrupted", "error", err.Error())
		}
	}

	state := simulation.State()
	logger.Info(ctx, "Simulation finished",
		"ticks", state.Tick,
		"time", state.Time,
		"position_x", state.Body.Position.X,
		"position_y", state.Body.Position.Y,
	)
}

// loadConfig loads the configuration file, falling back to defaults
// when the file does not exist, and applies environment overrides
func loadConfig(ctx context.Context, logger *logging.Logger, path string) *config.Config {
	var cfg *config.Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", path,
			)
			os.Exit(1)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	return cfg
}

// runPaced advances the simulation in wall-clock time so the ASCII
// view animates at the integration cadence
func runPaced(ctx context.Context, simulation *sim.Simulation, renderer entity.Renderer, steps int) {
	ticker := time.NewTicker(time.Duration(simulation.TimeStep * float64(time.Second)))
	defer ticker.Stop()

	for i := 0; steps == 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		renderer.Clear()
		simulation.Advance()
		renderer.Present()
	}
}

// startHealthServer exposes liveness and readiness probes for the feed
func startHealthServer(ctx context.Context, logger *logging.Logger, simulation *sim.Simulation, feedServer *network.FeedServer) *http.Server {
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}

	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(
		func() uint64 { return simulation.State().Tick },
		30*time.Second,
	))
	healthChecker.AddCheck(health.NewFeedHealthCheck(feedServer.Addr))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(500, nil))

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	healthServer := &http.Server{
		Addr:         envConfig.HealthAddr,
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server",
			"address", envConfig.HealthAddr,
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return healthServer
}
