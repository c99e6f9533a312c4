package provider

import (
	"sync"
	"time"
)

// ProviderStatus represents the health state of an endpoint.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Provider is working normally
	StatusDegraded                        // Provider is slow or failing intermittently
	StatusThrottled                       // Provider answered 429/403 recently
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	default:
		return "healthy"
	}
}

// MonitorStats holds monitoring statistics for an endpoint.
type MonitorStats struct {
	Status         ProviderStatus
	AverageLatency time.Duration
	Requests       int
	Failures       int
	ErrorRate      float64
	ThrottleCount  int
	LastSuccessAt  time.Time
	LastFailureAt  time.Time
}

// ProviderMonitor tracks endpoint latency and error rate. It only observes;
// nothing is retried or rotated based on it.
type ProviderMonitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	requests      int
	failures      int
	throttleCount int
	lastThrottle  time.Time
	lastSuccess   time.Time
	lastFailure   time.Time

	slowResponseThreshold time.Duration
	degradedThreshold     float64
	throttleWindow        time.Duration
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		slowResponseThreshold: 3 * time.Second,
		degradedThreshold:     0.3, // 30% error rate
		throttleWindow:        time.Minute,
	}
}

// RecordRequest records a successful request with its latency.
func (pm *ProviderMonitor) RecordRequest(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.recentLatencies = append(pm.recentLatencies, latency)
	if len(pm.recentLatencies) > pm.maxLatencyWindow {
		pm.recentLatencies = pm.recentLatencies[1:]
	}
	pm.requests++
	pm.lastSuccess = time.Now()
}

// RecordFailure records a failed request.
func (pm *ProviderMonitor) RecordFailure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.requests++
	pm.failures++
	pm.lastFailure = time.Now()
}

// RecordThrottle records a rate limiting or blocking response.
func (pm *ProviderMonitor) RecordThrottle() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.throttleCount++
	pm.lastThrottle = time.Now()
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats() MonitorStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	stats := MonitorStats{
		Requests:      pm.requests,
		Failures:      pm.failures,
		ThrottleCount: pm.throttleCount,
		LastSuccessAt: pm.lastSuccess,
		LastFailureAt: pm.lastFailure,
	}
	if pm.requests > 0 {
		stats.ErrorRate = float64(pm.failures) / float64(pm.requests)
	}
	if len(pm.recentLatencies) > 0 {
		var total time.Duration
		for _, lat := range pm.recentLatencies {
			total += lat
		}
		stats.AverageLatency = total / time.Duration(len(pm.recentLatencies))
	}

	switch {
	case pm.throttleCount > 0 && time.Since(pm.lastThrottle) < pm.throttleWindow:
		stats.Status = StatusThrottled
	case stats.ErrorRate > pm.degradedThreshold:
		stats.Status = StatusDegraded
	case len(pm.recentLatencies) > 10 && stats.AverageLatency > pm.slowResponseThreshold:
		stats.Status = StatusDegraded
	default:
		stats.Status = StatusHealthy
	}
	return stats
}
