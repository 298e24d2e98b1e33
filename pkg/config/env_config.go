// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig contains deployment settings read from TRAJECTORY_*
// environment variables. File config describes the physics run; environment
// config describes the process around it (feed endpoint, timeouts, circuit
// breaker tuning).
type EnvironmentConfig struct {
	FeedAddr     string
	MaxViewers   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	HealthAddr   string

	// Circuit breaker configuration for feed clients
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int
}

// LoadConfigFromEnv reads the environment configuration, applying defaults
// for unset variables and validating the result.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{
		FeedAddr:     getEnvString("TRAJECTORY_FEED_ADDR", "localhost:4590"),
		HealthAddr:   getEnvString("TRAJECTORY_HEALTH_ADDR", ":8080"),
		MaxViewers:   16,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,

		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		CircuitBreakerMaxConsecutiveFails: 5,
	}

	var err error
	if cfg.MaxViewers, err = getEnvInt("TRAJECTORY_MAX_VIEWERS", cfg.MaxViewers); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = getEnvDuration("TRAJECTORY_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getEnvDuration("TRAJECTORY_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxRequests, err = getEnvInt("TRAJECTORY_CB_MAX_REQUESTS", cfg.CircuitBreakerMaxRequests); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerInterval, err = getEnvDuration("TRAJECTORY_CB_INTERVAL", cfg.CircuitBreakerInterval); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerTimeout, err = getEnvDuration("TRAJECTORY_CB_TIMEOUT", cfg.CircuitBreakerTimeout); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxConsecutiveFails, err = getEnvInt("TRAJECTORY_CB_MAX_FAILS", cfg.CircuitBreakerMaxConsecutiveFails); err != nil {
		return nil, err
	}

	if err := validateEnvironmentConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvironmentOverrides applies TRAJECTORY_* overrides to a file
// configuration. Unset variables leave the file values untouched; the
// merged result is re-validated.
func ApplyEnvironmentOverrides(cfg *Config) error {
	var err error
	if cfg.Simulation.TimeStep, err = getEnvFloat("TRAJECTORY_TIME_STEP", cfg.Simulation.TimeStep); err != nil {
		return err
	}
	if cfg.Simulation.TraceInterval, err = getEnvFloat("TRAJECTORY_TRACE_INTERVAL", cfg.Simulation.TraceInterval); err != nil {
		return err
	}
	if addr := os.Getenv("TRAJECTORY_FEED_ADDR"); addr != "" {
		cfg.Feed.Address = addr
	}
	if cfg.Feed.MaxViewers, err = getEnvInt("TRAJECTORY_MAX_VIEWERS", cfg.Feed.MaxViewers); err != nil {
		return err
	}

	return cfg.Validate()
}

// validateEnvironmentConfig checks the environment configuration invariants
func validateEnvironmentConfig(cfg *EnvironmentConfig) error {
	if cfg.FeedAddr == "" {
		return fmt.Errorf("feed address cannot be empty")
	}
	if cfg.MaxViewers <= 0 {
		return fmt.Errorf("max viewers must be positive, got %d", cfg.MaxViewers)
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive: read=%v write=%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.CircuitBreakerMaxRequests <= 0 {
		return fmt.Errorf("circuit breaker max requests must be positive, got %d", cfg.CircuitBreakerMaxRequests)
	}
	if cfg.CircuitBreakerMaxConsecutiveFails <= 0 {
		return fmt.Errorf("circuit breaker max consecutive fails must be positive, got %d", cfg.CircuitBreakerMaxConsecutiveFails)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return parsed, nil
}
