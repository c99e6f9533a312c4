// Package metrics owns the Prometheus registry served on the metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelNetwork = "network"
	LabelWallet  = "walletName"
)

// Registry holds the balance gauge and the exporter's own sweep metrics.
// All vectors are safe for concurrent use; a scrape sees each pair's latest
// completed write.
type Registry struct {
	reg         *prometheus.Registry
	walletLabel bool

	// WalletBalance is the latest native-unit balance per pair.
	WalletBalance *prometheus.GaugeVec

	// SweepsTotal counts completed sweeps.
	SweepsTotal prometheus.Counter

	// SweepsSkipped counts ticks dropped because a sweep was still running.
	SweepsSkipped prometheus.Counter

	// SweepDuration tracks wall time of a full sweep.
	SweepDuration prometheus.Histogram

	// LastSweep is the unix time the last sweep finished.
	LastSweep prometheus.Gauge

	// FetchErrors counts failed pair fetches by failure kind.
	FetchErrors *prometheus.CounterVec

	// FetchDuration tracks per-query latency per network.
	FetchDuration *prometheus.HistogramVec

	// LastSuccess is the unix time of the last successful fetch per pair.
	LastSuccess *prometheus.GaugeVec
}

// New builds a registry. With walletLabel set the balance gauge is keyed by
// (network, walletName); otherwise by network alone.
func New(walletLabel bool) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	pairLabels := []string{LabelNetwork}
	if walletLabel {
		pairLabels = append(pairLabels, LabelWallet)
	}

	return &Registry{
		reg:         reg,
		walletLabel: walletLabel,
		WalletBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wallet_balance",
				Help: "Wallet balance in native gas token",
			},
			pairLabels,
		),
		SweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_exporter_sweeps_total",
			Help: "Total number of completed balance sweeps",
		}),
		SweepsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_exporter_sweeps_skipped_total",
			Help: "Total number of ticks skipped because a sweep was still running",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_exporter_sweep_duration_seconds",
			Help:    "Duration of a full balance sweep in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		LastSweep: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_exporter_last_sweep_timestamp_seconds",
			Help: "Unix time the last balance sweep finished",
		}),
		FetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_exporter_fetch_errors_total",
				Help: "Total number of failed balance queries",
			},
			[]string{LabelNetwork, "error_type"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_exporter_fetch_duration_seconds",
				Help:    "Balance query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{LabelNetwork},
		),
		LastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wallet_exporter_last_success_timestamp_seconds",
				Help: "Unix time of the last successful balance query",
			},
			[]string{LabelNetwork, LabelWallet},
		),
	}
}

// WalletLabel reports whether the balance gauge carries the walletName label.
func (r *Registry) WalletLabel() bool {
	return r.walletLabel
}

// SetBalance records the latest balance for a pair. Last write wins.
func (r *Registry) SetBalance(network, wallet string, value float64) {
	r.WalletBalance.With(r.balanceLabels(network, wallet)).Set(value)
}

// ObserveSuccess records a successful fetch for a pair.
func (r *Registry) ObserveSuccess(network, wallet string, took time.Duration, at time.Time) {
	r.FetchDuration.WithLabelValues(network).Observe(took.Seconds())
	r.LastSuccess.WithLabelValues(network, wallet).Set(float64(at.Unix()))
}

// ObserveFailure counts a failed fetch under its failure kind.
func (r *Registry) ObserveFailure(network, kind string, took time.Duration) {
	r.FetchDuration.WithLabelValues(network).Observe(took.Seconds())
	r.FetchErrors.WithLabelValues(network, kind).Inc()
}

// ObserveSweep records a finished sweep.
func (r *Registry) ObserveSweep(took time.Duration, finished time.Time) {
	r.SweepsTotal.Inc()
	r.SweepDuration.Observe(took.Seconds())
	r.LastSweep.Set(float64(finished.Unix()))
}

// Gatherer exposes the registry to the HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) balanceLabels(network, wallet string) prometheus.Labels {
	labels := prometheus.Labels{LabelNetwork: network}
	if r.walletLabel {
		labels[LabelWallet] = wallet
	}
	return labels
}
