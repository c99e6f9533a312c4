package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vietddude/wallet-exporter/internal/core/config"
	"github.com/vietddude/wallet-exporter/internal/core/domain"
	"github.com/vietddude/wallet-exporter/internal/infra/chain"
	"github.com/vietddude/wallet-exporter/internal/infra/chain/bitcoin"
	"github.com/vietddude/wallet-exporter/internal/infra/chain/evm"
	"github.com/vietddude/wallet-exporter/internal/infra/chain/solana"
	"github.com/vietddude/wallet-exporter/internal/polling/health"
	"github.com/vietddude/wallet-exporter/internal/polling/metrics"
	"github.com/vietddude/wallet-exporter/internal/polling/poller"
)

// Exporter wires the balance poller, the metrics registry and the HTTP server.
type Exporter struct {
	cfg       *config.AppConfig
	fetcher   *chain.Fetcher
	registry  *metrics.Registry
	poller    *poller.Poller
	healthMon *health.Monitor
	server    *health.Server
	log       *slog.Logger

	wg    sync.WaitGroup
	errCh chan error
}

// NewExporter builds every component from a validated configuration.
func NewExporter(cfg *config.AppConfig) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := slog.Default()

	networks := cfg.NetworkList()
	scrapable := cfg.ScrapableNetworks()

	adapters := make(map[string]chain.Adapter, len(scrapable))
	for _, name := range scrapable {
		network := networks[name]
		adapter, err := NewAdapter(network)
		if err != nil {
			for _, a := range adapters {
				a.Close()
			}
			return nil, fmt.Errorf("network %s: %w", name, err)
		}
		adapters[name] = adapter
		log.Info("Network configured",
			"network", name,
			"type", network.Type,
			"decimals", network.NativeDecimals(),
		)
	}

	fetcher := chain.NewFetcher(networks, adapters)
	registry := metrics.New(cfg.WalletLabelEnabled())
	healthMon := health.NewMonitor(scrapable, fetcher, cfg.Poller.Interval)

	wallets := cfg.WalletList()
	p, err := poller.New(poller.Config{
		Pairs:       domain.Pairs(wallets, networks),
		Fetcher:     fetcher,
		Metrics:     registry,
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Logger:      log,
		OnSweep:     healthMon.RecordSweep,
	})
	if err != nil {
		fetcher.Close()
		return nil, err
	}

	server := health.NewServer(healthMon, registry.Gatherer(), health.ServerOptions{
		Port:         cfg.Server.Port,
		MetricsPath:  cfg.Server.MetricsPath,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Logger:       log,
	})

	log.Info("Exporter initialized",
		"profile", cfg.Profile,
		"wallets", len(wallets),
		"networks", len(scrapable),
		"wallet_label", registry.WalletLabel(),
	)

	return &Exporter{
		cfg:       cfg,
		fetcher:   fetcher,
		registry:  registry,
		poller:    p,
		healthMon: healthMon,
		server:    server,
		log:       log,
		errCh:     make(chan error, 1),
	}, nil
}

// NewAdapter builds the balance adapter for a network's chain family.
func NewAdapter(network domain.Network) (chain.Adapter, error) {
	switch network.Type {
	case domain.NetworkTypeEVM, "":
		return evm.NewEVMAdapter(network.Name, network.URL), nil
	case domain.NetworkTypeBitcoin:
		return bitcoin.NewBitcoinAdapter(network.Name, network.URL, network.Timeout, network.IncludeMempool), nil
	case domain.NetworkTypeSolana:
		return solana.NewSolanaAdapter(network.Name, network.URL), nil
	default:
		return nil, fmt.Errorf("unsupported network type %q", network.Type)
	}
}

// Start launches the HTTP server and the poller. It does not block.
func (e *Exporter) Start(ctx context.Context) error {
	e.wg.Add(2)

	go func() {
		defer e.wg.Done()
		if err := e.server.Start(); err != nil {
			e.log.Error("HTTP server failed", "error", err)
			e.report(fmt.Errorf("http server: %w", err))
		}
	}()

	go func() {
		defer e.wg.Done()
		if err := e.poller.Run(ctx); err != nil {
			e.log.Error("Poller failed", "error", err)
			e.report(fmt.Errorf("poller: %w", err))
		}
	}()

	return nil
}

// Wait blocks until ctx is done or a component fails.
func (e *Exporter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-e.errCh:
		return err
	}
}

// Stop shuts the HTTP server down, waits for the running sweep to end and
// closes the RPC clients. The context passed to Start must be cancelled first.
func (e *Exporter) Stop(ctx context.Context) error {
	e.log.Info("Stopping exporter...")

	err := e.server.Stop(ctx)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, fmt.Errorf("waiting for poller: %w", ctx.Err()))
	}

	return errors.Join(err, e.fetcher.Close())
}

// SweepOnce runs a single sweep without starting the server.
func (e *Exporter) SweepOnce(ctx context.Context) (poller.SweepResult, error) {
	return e.poller.SweepOnce(ctx)
}

// Network returns the configured network by name.
func (e *Exporter) Network(name string) (domain.Network, bool) {
	return e.fetcher.Network(name)
}

// Registry returns the metrics registry.
func (e *Exporter) Registry() *metrics.Registry {
	return e.registry
}

// Health returns the current health report.
func (e *Exporter) Health() health.HealthReport {
	return e.healthMon.CheckHealth()
}

// Close releases RPC clients of an exporter that was never started.
func (e *Exporter) Close() error {
	return e.fetcher.Close()
}

func (e *Exporter) report(err error) {
	select {
	case e.errCh <- err:
	default:
	}
}
