package health

import (
	"context"
	"time"
)

// Pinger is anything the readiness probe can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	backend Pinger
	cache   Pinger
	timeout time.Duration
}

type HealthStatus struct {
	Status  string           `json:"status"`
	Backend DependencyHealth `json:"backend"`
	Cache   DependencyHealth `json:"cache"`
}

type DependencyHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// NewHealthChecker takes a nil cache when response caching is disabled.
func NewHealthChecker(backend, cache Pinger) *HealthChecker {
	return &HealthChecker{backend: backend, cache: cache, timeout: 2 * time.Second}
}

// CheckBasic reports unhealthy only when the backend is unreachable. A broken
// cache degrades to direct backend reads.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	backendHealth := h.check(ctx, h.backend)
	cacheHealth := DependencyHealth{Status: "disabled"}
	if h.cache != nil {
		cacheHealth = h.check(ctx, h.cache)
	}

	status := "healthy"
	switch {
	case backendHealth.Status != "healthy":
		status = "unhealthy"
	case cacheHealth.Status == "unhealthy":
		status = "degraded"
	}

	return HealthStatus{
		Status:  status,
		Backend: backendHealth,
		Cache:   cacheHealth,
	}
}

func (h *HealthChecker) check(ctx context.Context, p Pinger) DependencyHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DependencyHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return DependencyHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
