package monitoring

import (
	"context"
	"sync"
	"time"
)

type HealthCheck struct {
	Name     string
	Check    func(ctx context.Context) (bool, error)
	Interval time.Duration
	Timeout  time.Duration
}

type CheckResult struct {
	Healthy   bool      `json:"healthy"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// HealthChecker runs registered checks in the background and keeps the
// latest result per check so status endpoints never block on a probe.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  []HealthCheck
	results map[string]CheckResult
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		results: make(map[string]CheckResult),
	}
}

func (h *HealthChecker) AddCheck(name string, check func(ctx context.Context) (bool, error), interval, timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks = append(h.checks, HealthCheck{
		Name:     name,
		Check:    check,
		Interval: interval,
		Timeout:  timeout,
	})
}

// CheckAll runs every check immediately and records the results.
func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	for _, check := range checks {
		h.runCheck(ctx, check)
	}
	return h.Snapshot()
}

// Snapshot reports the latest recorded results without running anything.
func (h *HealthChecker) Snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(h.results)),
	}
	for name, result := range h.results {
		status.Checks[name] = result
		if !result.Healthy {
			status.Status = "unhealthy"
		}
	}
	return status
}

// StartBackgroundChecks launches one goroutine per registered check. They
// stop when ctx is cancelled.
func (h *HealthChecker) StartBackgroundChecks(ctx context.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, check := range h.checks {
		go h.loop(ctx, check)
	}
}

func (h *HealthChecker) loop(ctx context.Context, check HealthCheck) {
	h.runCheck(ctx, check)

	ticker := time.NewTicker(check.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.runCheck(ctx, check)
		}
	}
}

func (h *HealthChecker) runCheck(ctx context.Context, check HealthCheck) {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	healthy, err := check.Check(checkCtx)
	cancel()

	result := CheckResult{Healthy: healthy && err == nil, CheckedAt: time.Now()}
	if err != nil {
		result.Detail = err.Error()
	} else if !healthy {
		result.Detail = "check failed"
	}

	h.mu.Lock()
	h.results[check.Name] = result
	h.mu.Unlock()
}
