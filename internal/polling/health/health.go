// Package health provides exporter health reporting and the HTTP endpoint that
// serves it alongside the metrics.
package health

import "time"

// SystemStatus represents the overall health state of the exporter or a network.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
	StatusUnknown  SystemStatus = "unknown" // no sweep has finished yet
)

// NetworkHealth contains the outcome of the last sweep for one network.
type NetworkHealth struct {
	Network        string       `json:"network"`
	Status         SystemStatus `json:"status"`
	Pairs          int          `json:"pairs"`
	Failed         int          `json:"failed"`
	LastError      string       `json:"last_error,omitempty"`
	LastErrorType  string       `json:"last_error_type,omitempty"`
	RPCErrorRate   float64      `json:"rpc_error_rate"`
	AvgLatencyMs   int64        `json:"avg_latency_ms"`
	ProviderStatus string       `json:"provider_status"`
}

// HealthReport contains the full exporter health report.
type HealthReport struct {
	SystemStatus    SystemStatus             `json:"system_status"`
	LastSweepID     string                   `json:"last_sweep_id,omitempty"`
	LastSweepAt     *time.Time               `json:"last_sweep_at,omitempty"`
	SweepDurationMs int64                    `json:"sweep_duration_ms"`
	Stale           bool                     `json:"stale"`
	Networks        map[string]NetworkHealth `json:"networks"`
}

// worse returns the more severe of two statuses.
func worse(a, b SystemStatus) SystemStatus {
	if severity(b) > severity(a) {
		return b
	}
	return a
}

func severity(s SystemStatus) int {
	switch s {
	case StatusCritical:
		return 3
	case StatusDegraded:
		return 2
	case StatusUnknown:
		return 1
	default:
		return 0
	}
}
