// Package health provides health check functionality for the trajectory
// feed service. It implements HTTP endpoints for liveness and readiness
// probes so deployments can monitor a long-running simulation.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthCheck defines the interface for individual health checks.
// Each component can implement this interface to provide its health status.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the
// aggregated status. The overall status is "healthy" only if all
// individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler provides a simple liveness probe endpoint. It returns
// 200 OK if the process is running and able to handle requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": "alive"}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler provides a readiness probe endpoint that executes all
// health checks. It returns 200 OK if the service is ready, or 503
// Service Unavailable if any health check fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// SimulationHealthCheck reports unhealthy when the simulation stops
// advancing. The tick is sampled on each check; if it has not moved
// within the stall window the simulation is considered stuck.
type SimulationHealthCheck struct {
	getTick    func() uint64
	stallAfter time.Duration

	mu          sync.Mutex
	lastTick    uint64
	lastAdvance time.Time
}

// NewSimulationHealthCheck creates a health check over a tick source.
// stallAfter bounds how long the tick may stand still before the check
// fails.
func NewSimulationHealthCheck(getTick func() uint64, stallAfter time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		getTick:     getTick,
		stallAfter:  stallAfter,
		lastAdvance: time.Now(),
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the simulation tick is still advancing.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tick := s.getTick()
	if tick != s.lastTick {
		s.lastTick = tick
		s.lastAdvance = time.Now()
		return nil
	}

	if stalled := time.Since(s.lastAdvance); stalled > s.stallAfter {
		return fmt.Errorf("simulation stalled at tick %d for %s", tick, stalled.Round(time.Millisecond))
	}
	return nil
}

// FeedHealthCheck verifies that the trajectory feed listener is active.
type FeedHealthCheck struct {
	listenerAddr func() string
}

// NewFeedHealthCheck creates a health check for the feed listener.
func NewFeedHealthCheck(listenerAddr func() string) *FeedHealthCheck {
	return &FeedHealthCheck{
		listenerAddr: listenerAddr,
	}
}

// Name returns the name of this health check.
func (f *FeedHealthCheck) Name() string {
	return "feed"
}

// Check verifies that the feed listener is active.
func (f *FeedHealthCheck) Check(ctx context.Context) error {
	if f.listenerAddr() == "" {
		return fmt.Errorf("feed listener is not active")
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage. A nil
// usage function samples the Go heap.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = heapAllocMB
	}
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// heapAllocMB samples the current heap allocation in megabytes
func heapAllocMB() int64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return int64(stats.HeapAlloc / (1024 * 1024))
}
