// Package poller drives periodic balance sweeps and writes their results to
// the metrics registry.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/wallet-exporter/internal/core/domain"
	"github.com/vietddude/wallet-exporter/internal/infra/chain"
	"github.com/vietddude/wallet-exporter/internal/polling/metrics"
)

var (
	ErrAlreadyRunning  = errors.New("poller already running")
	ErrSweepInProgress = errors.New("sweep already in progress")
)

// Fetcher returns the current balance of one pair.
type Fetcher interface {
	Fetch(ctx context.Context, pair domain.Pair) (domain.BalanceSample, error)
}

// Config configures a Poller.
type Config struct {
	Pairs       []domain.Pair
	Fetcher     Fetcher
	Metrics     *metrics.Registry
	Interval    time.Duration
	Concurrency int // max in-flight queries; <= 1 is sequential
	Logger      *slog.Logger

	// OnSweep, when set, receives every finished sweep.
	OnSweep func(SweepResult)
}

// Failure is a pair whose balance could not be fetched in a sweep.
type Failure struct {
	Network string
	Wallet  string
	Kind    chain.Kind
	Err     error
}

// SweepResult summarizes one pass over every pair.
type SweepResult struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Samples  []domain.BalanceSample
	Failures []Failure
	Aborted  bool
}

// Poller sweeps all pairs once per interval. A tick that arrives while the
// previous sweep is still running is skipped.
type Poller struct {
	cfg      Config
	logger   *slog.Logger
	running  atomic.Bool
	sweeping atomic.Bool
}

func New(cfg Config) (*Poller, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("poller: fetcher is required")
	}
	if cfg.Metrics == nil {
		return nil, errors.New("poller: metrics registry is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("poller: invalid interval %s", cfg.Interval)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{cfg: cfg, logger: logger.With("component", "poller")}, nil
}

// Run sweeps immediately, then on every tick until ctx is cancelled. It waits
// for an in-flight sweep before returning.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	var wg sync.WaitGroup
	defer wg.Wait()

	p.logger.Info("Poller started",
		"pairs", len(p.cfg.Pairs),
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	p.trigger(ctx, &wg)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopping")
			return nil
		case <-ticker.C:
			p.trigger(ctx, &wg)
		}
	}
}

// Running reports whether Run is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// SweepOnce runs a single sweep synchronously.
func (p *Poller) SweepOnce(ctx context.Context) (SweepResult, error) {
	if !p.sweeping.CompareAndSwap(false, true) {
		return SweepResult{}, ErrSweepInProgress
	}
	defer p.sweeping.Store(false)
	return p.sweep(ctx), nil
}

func (p *Poller) trigger(ctx context.Context, wg *sync.WaitGroup) {
	if !p.sweeping.CompareAndSwap(false, true) {
		p.cfg.Metrics.SweepsSkipped.Inc()
		p.logger.Warn("Previous sweep still running, skipping tick")
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer p.sweeping.Store(false)
		p.sweep(ctx)
	}()
}

type outcome struct {
	sample domain.BalanceSample
	fail   *Failure
	done   bool
}

func (p *Poller) sweep(ctx context.Context) SweepResult {
	result := SweepResult{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	logger := p.logger.With("sweep_id", result.ID)
	logger.Debug("Sweep started", "pairs", len(p.cfg.Pairs))

	outcomes := make([]outcome, len(p.cfg.Pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, pair := range p.cfg.Pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.fetchPair(gctx, logger, pair)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch {
		case !o.done:
			result.Aborted = true
		case o.fail != nil:
			result.Failures = append(result.Failures, *o.fail)
		default:
			result.Samples = append(result.Samples, o.sample)
		}
	}
	result.Duration = time.Since(result.Started)

	if result.Aborted {
		logger.Info("Sweep aborted",
			"completed", len(result.Samples)+len(result.Failures),
			"pairs", len(p.cfg.Pairs),
		)
	} else {
		p.cfg.Metrics.ObserveSweep(result.Duration, time.Now())
		logger.Info("Sweep completed",
			"duration", result.Duration,
			"ok", len(result.Samples),
			"failed", len(result.Failures),
		)
	}

	if p.cfg.OnSweep != nil {
		p.cfg.OnSweep(result)
	}
	return result
}

// fetchPair queries one pair. A failed pair leaves its gauge untouched so the
// last good value stays exported.
func (p *Poller) fetchPair(ctx context.Context, logger *slog.Logger, pair domain.Pair) outcome {
	start := time.Now()
	sample, err := p.cfg.Fetcher.Fetch(ctx, pair)
	took := time.Since(start)

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return outcome{}
		}
		kind := chain.KindOf(err)
		p.cfg.Metrics.ObserveFailure(pair.Network.Name, string(kind), took)
		logger.Warn("Balance query failed",
			"network", pair.Network.Name,
			"wallet", pair.Wallet.Name,
			"error_type", kind,
			"error", err,
		)
		return outcome{
			done: true,
			fail: &Failure{Network: pair.Network.Name, Wallet: pair.Wallet.Name, Kind: kind, Err: err},
		}
	}

	p.cfg.Metrics.SetBalance(sample.Network, sample.Wallet, sample.Value)
	p.cfg.Metrics.ObserveSuccess(sample.Network, sample.Wallet, took, sample.ObservedAt)
	logger.Debug("Balance updated",
		"network", sample.Network,
		"wallet", sample.Wallet,
		"balance", domain.FormatNative(sample.Amount, pair.Network.NativeDecimals()),
	)
	return outcome{sample: sample, done: true}
}
