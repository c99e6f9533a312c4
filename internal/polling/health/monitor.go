package health

import (
	"sync"
	"time"

	"github.com/vietddude/wallet-exporter/internal/infra/rpc/provider"
	"github.com/vietddude/wallet-exporter/internal/polling/poller"
)

// StatsSource reports per-network endpoint statistics.
type StatsSource interface {
	Stats() map[string]provider.MonitorStats
}

// Monitor aggregates the last sweep and endpoint statistics into a report.
type Monitor struct {
	networks []string
	stats    StatsSource
	interval time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	lastSweep *poller.SweepResult
}

// NewMonitor creates a monitor for the given networks. A sweep older than
// three intervals marks the report stale.
func NewMonitor(networks []string, stats StatsSource, interval time.Duration) *Monitor {
	return &Monitor{
		networks: networks,
		stats:    stats,
		interval: interval,
		now:      time.Now,
	}
}

// RecordSweep stores the result of a finished sweep. Aborted sweeps are ignored.
func (m *Monitor) RecordSweep(res poller.SweepResult) {
	if res.Aborted {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSweep = &res
}

// CheckHealth builds a report from the last recorded sweep.
func (m *Monitor) CheckHealth() HealthReport {
	m.mu.RLock()
	sweep := m.lastSweep
	m.mu.RUnlock()

	var stats map[string]provider.MonitorStats
	if m.stats != nil {
		stats = m.stats.Stats()
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Networks:     make(map[string]NetworkHealth, len(m.networks)),
	}

	for _, name := range m.networks {
		nh := NetworkHealth{Network: name, Status: StatusUnknown}
		if st, ok := stats[name]; ok {
			nh.RPCErrorRate = st.ErrorRate
			nh.AvgLatencyMs = st.AverageLatency.Milliseconds()
			nh.ProviderStatus = st.Status.String()
		}
		report.Networks[name] = nh
	}

	if sweep == nil {
		report.SystemStatus = StatusUnknown
		return report
	}

	finished := sweep.Started.Add(sweep.Duration)
	report.LastSweepID = sweep.ID
	report.LastSweepAt = &finished
	report.SweepDurationMs = sweep.Duration.Milliseconds()

	for _, s := range sweep.Samples {
		nh := report.Networks[s.Network]
		nh.Pairs++
		report.Networks[s.Network] = nh
	}
	for _, f := range sweep.Failures {
		nh := report.Networks[f.Network]
		nh.Pairs++
		nh.Failed++
		nh.LastError = f.Err.Error()
		nh.LastErrorType = string(f.Kind)
		report.Networks[f.Network] = nh
	}

	for name, nh := range report.Networks {
		nh.Network = name
		nh.Status = networkStatus(nh)
		report.Networks[name] = nh
		report.SystemStatus = worse(report.SystemStatus, nh.Status)
	}

	if m.interval > 0 && m.now().Sub(finished) > 3*m.interval {
		report.Stale = true
		report.SystemStatus = worse(report.SystemStatus, StatusDegraded)
	}
	return report
}

func networkStatus(nh NetworkHealth) SystemStatus {
	switch {
	case nh.Pairs == 0:
		return StatusUnknown
	case nh.Failed == nh.Pairs:
		return StatusCritical
	case nh.Failed > 0:
		return StatusDegraded
	case nh.ProviderStatus != "" && nh.ProviderStatus != provider.StatusHealthy.String():
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
