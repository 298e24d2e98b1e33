// pkg/health/health_test.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// stubCheck is a configurable health check for tests
type stubCheck struct {
	name string
	err  error
}

func (s *stubCheck) Name() string                    { return s.name }
func (s *stubCheck) Check(ctx context.Context) error { return s.err }

func TestHealthChecker_AllHealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "a"})
	hc.AddCheck(&stubCheck{name: "b"})

	status := hc.CheckHealth(context.Background())

	if status.Status != "healthy" {
		t.Errorf("status = %q, expected healthy", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("checks = %d, expected 2", len(status.Checks))
	}
}

func TestHealthChecker_OneUnhealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "good"})
	hc.AddCheck(&stubCheck{name: "bad", err: errors.New("broken")})

	status := hc.CheckHealth(context.Background())

	if status.Status != "unhealthy" {
		t.Errorf("status = %q, expected unhealthy", status.Status)
	}
	if status.Checks["bad"].Message != "broken" {
		t.Errorf("message = %q, expected the check error", status.Checks["bad"].Message)
	}
	if status.Checks["good"].Status != "healthy" {
		t.Error("passing check should still report healthy")
	}
}

func TestHealthChecker_RemoveCheck(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "bad", err: errors.New("broken")})
	hc.RemoveCheck("bad")

	status := hc.CheckHealth(context.Background())
	if status.Status != "healthy" {
		t.Errorf("status after removal = %q, expected healthy", status.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	hc := NewHealthChecker()
	// Liveness ignores registered checks
	hc.AddCheck(&stubCheck{name: "bad", err: errors.New("broken")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	hc.LivenessHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, expected 200", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
		wantCode int
		wantBody string
	}{
		{"ready", nil, http.StatusOK, "healthy"},
		{"not ready", errors.New("broken"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.AddCheck(&stubCheck{name: "component", err: tt.checkErr})

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			hc.ReadinessHandler(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, expected %d", rec.Code, tt.wantCode)
			}

			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if status.Status != tt.wantBody {
				t.Errorf("body status = %q, expected %q", status.Status, tt.wantBody)
			}
		})
	}
}

func TestSimulationHealthCheck_AdvancingTick(t *testing.T) {
	tick := uint64(0)
	check := NewSimulationHealthCheck(func() uint64 { return tick }, 50*time.Millisecond)

	if err := check.Check(context.Background()); err != nil {
		t.Errorf("initial check: %v", err)
	}

	tick = 1
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("check with advancing tick: %v", err)
	}
}

func TestSimulationHealthCheck_StalledTick(t *testing.T) {
	check := NewSimulationHealthCheck(func() uint64 { return 7 }, 10*time.Millisecond)

	// First observation records the tick
	check.Check(context.Background())

	time.Sleep(30 * time.Millisecond)

	if err := check.Check(context.Background()); err == nil {
		t.Error("expected stalled simulation to fail the check")
	}
}

func TestSimulationHealthCheck_WithinStallWindow(t *testing.T) {
	check := NewSimulationHealthCheck(func() uint64 { return 7 }, time.Hour)

	check.Check(context.Background())
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("stationary tick within the window should pass: %v", err)
	}
}

func TestFeedHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"active listener", "127.0.0.1:4590", false},
		{"inactive listener", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewFeedHealthCheck(func() string { return tt.addr })
			err := check.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		usage   int64
		wantErr bool
	}{
		{"within limit", 100, 50, false},
		{"at limit", 100, 100, false},
		{"over limit", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewMemoryHealthCheck(tt.limit, func() int64 { return tt.usage })
			err := check.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryHealthCheck_DefaultSampler(t *testing.T) {
	check := NewMemoryHealthCheck(1<<20, nil)
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("heap sampler against a huge limit should pass: %v", err)
	}
}
