// Package network publishes trajectory data over TCP and consumes it
// on the viewer side. The circuit breaker wraps feed operations to
// prevent cascading failures and give graceful degradation when the
// feed endpoint is unreachable.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/logging"
)

// FeedService wraps feed operations with circuit breaker functionality.
// It provides retry logic, exponential backoff, and failure isolation
// for the trajectory feed connection.
type FeedService struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
	config  *config.EnvironmentConfig
}

// FeedOperation represents a function that performs a feed operation.
// It should return an error if the operation fails.
type FeedOperation func() error

// NewFeedService creates a FeedService with the circuit breaker
// configured from environment settings.
func NewFeedService(envConfig *config.EnvironmentConfig) *FeedService {
	logger := logging.NewLogger()

	settings := gobreaker.Settings{
		Name:        "trajectory-feed",
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
		},
	}

	return &FeedService{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		config:  envConfig,
	}
}

// Execute runs a feed operation through the circuit breaker. If the
// circuit is open the operation is rejected immediately.
func (fs *FeedService) Execute(ctx context.Context, operation FeedOperation) error {
	_, err := fs.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		fs.logger.LogWithContext(ctx, slog.LevelError, "circuit breaker execution failed",
			"error", err,
			"state", fs.breaker.State(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}

	return nil
}

// ExecuteWithRetry runs a feed operation with retry logic and linear
// backoff. The circuit breaker state is checked before each retry.
func (fs *FeedService) ExecuteWithRetry(ctx context.Context, operation FeedOperation) error {
	maxRetries := 3
	baseDelay := 1 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fs.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if fs.breaker.State() == gobreaker.StateOpen {
			fs.logger.LogWithContext(ctx, slog.LevelWarn, "circuit breaker is open, skipping retries",
				"attempt", attempt+1,
				"max_retries", maxRetries,
			)
			return err
		}

		if attempt == maxRetries-1 {
			fs.logger.LogWithContext(ctx, slog.LevelError, "all retry attempts failed",
				"attempts", maxRetries,
				"final_error", err,
			)
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		delay := time.Duration(attempt+1) * baseDelay
		fs.logger.LogWithContext(ctx, slog.LevelWarn, "operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("unexpected exit from retry loop")
}

// GetState returns the current state of the circuit breaker
func (fs *FeedService) GetState() gobreaker.State {
	return fs.breaker.State()
}

// GetCounts returns the current failure/success counts of the circuit
// breaker
func (fs *FeedService) GetCounts() gobreaker.Counts {
	return fs.breaker.Counts()
}
