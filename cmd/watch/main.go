// cmd/watch/main.go
package main

import (
	"context"
	"flag"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/event"
	"github.com/opd-ai/go-trajectory/pkg/logging"
	"github.com/opd-ai/go-trajectory/pkg/network"
	"github.com/opd-ai/go-trajectory/pkg/render"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	serverAddr := flag.String("server", "", "Feed address (overrides TRAJECTORY_FEED_ADDR)")
	viewerName := flag.String("name", "watcher", "Viewer name")
	scale := flag.Float64("scale", 1.0, "World units per character cell")
	flag.Parse()

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}
	if *serverAddr == "" {
		*serverAddr = envConfig.FeedAddr
	}

	eventBus := event.NewEventBus()
	client := network.NewFeedClient(eventBus)

	// The circuit breaker keeps a flapping feed endpoint from being
	// hammered with reconnect attempts
	feedService := network.NewFeedService(envConfig)
	logger.Info(ctx, "Connecting to trajectory feed", "address", *serverAddr)
	err = feedService.ExecuteWithRetry(ctx, func() error {
		return client.Connect(*serverAddr, *viewerName)
	})
	if err != nil {
		logger.Error(ctx, "Failed to connect to feed", err,
			"address", *serverAddr,
		)
		os.Exit(1)
	}
	defer client.Disconnect()

	renderer, err := render.NewLiveRenderer(*scale)
	if err != nil {
		logger.Error(ctx, "Failed to initialize terminal", err)
		os.Exit(1)
	}
	defer renderer.Close()

	render.Bind(eventBus, renderer)

	// Repaint whenever the feed delivers something new
	eventBus.Subscribe(event.BodyUpdated, func(e event.Event) {
		renderer.Present()
	})
	eventBus.Subscribe(event.TracerSampled, func(e event.Event) {
		renderer.Present()
	})
	eventBus.Subscribe(network.ViewerReconnectFailed, func(e event.Event) {
		renderer.Close()
		logger.Error(ctx, "Lost connection to feed", nil)
		os.Exit(1)
	})

	timeStep, traceInterval := client.Cadence()
	logger.Info(ctx, "Subscribed to feed",
		"viewer_id", client.ViewerID(),
		"time_step", timeStep,
		"trace_interval", traceInterval,
	)

	// Block on terminal input until the viewer quits
	for {
		switch ev := renderer.Screen().PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return
			}
		case *tcell.EventResize:
			renderer.Clear()
			renderer.Present()
		case nil:
			return
		}
	}
}
