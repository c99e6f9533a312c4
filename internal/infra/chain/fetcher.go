package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vietddude/wallet-exporter/internal/core/domain"
	"github.com/vietddude/wallet-exporter/internal/infra/rpc/provider"
)

// Monitored is implemented by adapters whose transport records its own
// request statistics.
type Monitored interface {
	Monitor() *provider.ProviderMonitor
}

// Fetcher resolves a (wallet, network) pair to a balance sample.
type Fetcher struct {
	adapters map[string]Adapter
	networks map[string]domain.Network
	monitors map[string]*provider.ProviderMonitor
	external map[string]bool // monitor fed by the adapter's transport
	now      func() time.Time
}

// NewFetcher binds one adapter per network name.
func NewFetcher(networks map[string]domain.Network, adapters map[string]Adapter) *Fetcher {
	monitors := make(map[string]*provider.ProviderMonitor, len(adapters))
	external := make(map[string]bool)
	for name, a := range adapters {
		if m, ok := a.(Monitored); ok && m.Monitor() != nil {
			monitors[name] = m.Monitor()
			external[name] = true
			continue
		}
		monitors[name] = provider.NewProviderMonitor()
	}
	return &Fetcher{
		adapters: adapters,
		networks: networks,
		monitors: monitors,
		external: external,
		now:      time.Now,
	}
}

// Fetch queries the pair's balance and converts it to the native unit.
// Any failure is returned as *FetchError carrying network and wallet.
func (f *Fetcher) Fetch(ctx context.Context, pair domain.Pair) (domain.BalanceSample, error) {
	network := pair.Network.Name
	adapter, ok := f.adapters[network]
	if !ok {
		return domain.BalanceSample{}, f.annotate(pair,
			&FetchError{Kind: KindConfig, Op: "lookup", Err: fmt.Errorf("no adapter for network %s", network)})
	}

	if pair.Network.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pair.Network.Timeout)
		defer cancel()
	}

	monitor := f.monitors[network]
	record := !f.external[network]
	start := time.Now()
	amount, err := adapter.GetBalance(ctx, pair.Wallet.Address)
	if err == nil && (amount == nil || amount.Sign() < 0) {
		err = &FetchError{Kind: KindParse, Op: "get balance", Err: fmt.Errorf("invalid amount %v", amount)}
	}
	if err != nil {
		if record {
			monitor.RecordFailure()
		}
		return domain.BalanceSample{}, f.annotate(pair, Wrap(KindQuery, "get balance", err))
	}
	if record {
		monitor.RecordRequest(time.Since(start))
	}

	return domain.BalanceSample{
		Network:    network,
		Wallet:     pair.Wallet.Name,
		Address:    pair.Wallet.Address,
		Amount:     amount,
		Value:      domain.ToNative(amount, pair.Network.NativeDecimals()),
		ObservedAt: f.now(),
	}, nil
}

func (f *Fetcher) annotate(pair domain.Pair, err error) error {
	var fe *FetchError
	if !errors.As(err, &fe) {
		fe = &FetchError{Kind: KindQuery, Op: "get balance", Err: err}
	}
	out := *fe
	out.Network = pair.Network.Name
	out.Wallet = pair.Wallet.Name
	return &out
}

// Network returns the configured network by name.
func (f *Fetcher) Network(name string) (domain.Network, bool) {
	n, ok := f.networks[name]
	return n, ok
}

// Stats returns latency and error-rate stats per network.
func (f *Fetcher) Stats() map[string]provider.MonitorStats {
	out := make(map[string]provider.MonitorStats, len(f.monitors))
	for name, m := range f.monitors {
		out[name] = m.GetStats()
	}
	return out
}

// Close closes every adapter and joins their errors.
func (f *Fetcher) Close() error {
	names := make([]string, 0, len(f.adapters))
	for name := range f.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := f.adapters[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
