package bitcoin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"time"

	"github.com/vietddude/wallet-exporter/internal/infra/chain"
	"github.com/vietddude/wallet-exporter/internal/infra/rpc/provider"
)

// BitcoinAdapter reads address balances (satoshis) from an Esplora-compatible
// REST API such as blockstream.info or mempool.space.
type BitcoinAdapter struct {
	network        string
	client         *provider.HTTPProvider
	includeMempool bool
}

func NewBitcoinAdapter(network, baseURL string, timeout time.Duration, includeMempool bool) *BitcoinAdapter {
	client := provider.NewHTTPProvider(network, baseURL, timeout)
	client.SetUserAgent("wallet-exporter")
	return &BitcoinAdapter{
		network:        network,
		client:         client,
		includeMempool: includeMempool,
	}
}

func (a *BitcoinAdapter) Name() string {
	return a.network
}

// GetBalance returns funded minus spent outputs for address. Unconfirmed
// outputs are added when the adapter was built with includeMempool.
func (a *BitcoinAdapter) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if address == "" {
		return nil, chain.Wrap(chain.KindParse, "parse address", errors.New("empty address"))
	}

	result, err := a.client.Get(ctx, "address/"+url.PathEscape(address))
	if err != nil {
		return nil, chain.Wrap(classify(err), "GET /address", err)
	}

	data, ok := result.(map[string]any)
	if !ok {
		return nil, chain.Wrap(chain.KindParse, "GET /address", fmt.Errorf("unexpected response type %T", result))
	}

	confirmed, err := statsBalance(data, "chain_stats")
	if err != nil {
		return nil, chain.Wrap(chain.KindParse, "GET /address", err)
	}
	if !a.includeMempool {
		return confirmed, nil
	}

	mempool, err := statsBalance(data, "mempool_stats")
	if err != nil {
		return nil, chain.Wrap(chain.KindParse, "GET /address", err)
	}
	return confirmed.Add(confirmed, mempool), nil
}

// Monitor exposes the transport's request statistics.
func (a *BitcoinAdapter) Monitor() *provider.ProviderMonitor {
	return a.client.Monitor
}

func (a *BitcoinAdapter) Close() error {
	return a.client.Close()
}

func statsBalance(data map[string]any, key string) (*big.Int, error) {
	stats, ok := data[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %s", key)
	}
	funded, err := sats(stats, "funded_txo_sum")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	spent, err := sats(stats, "spent_txo_sum")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return new(big.Int).Sub(funded, spent), nil
}

// sats reads a JSON number; satoshi totals stay well inside float64's exact
// integer range (2^53).
func sats(stats map[string]any, field string) (*big.Int, error) {
	v, ok := stats[field].(float64)
	if !ok {
		return nil, fmt.Errorf("missing %s", field)
	}
	if v < 0 || v > 1<<53 || v != math.Trunc(v) {
		return nil, fmt.Errorf("invalid %s: %v", field, v)
	}
	return new(big.Int).SetUint64(uint64(v)), nil
}

func classify(err error) chain.Kind {
	var httpErr *provider.HTTPError
	switch {
	case errors.Is(err, provider.ErrInvalidResponse):
		return chain.KindParse
	case errors.As(err, &httpErr):
		if httpErr.StatusCode == 400 {
			return chain.KindParse // esplora rejects malformed addresses with 400
		}
		return chain.KindQuery
	default:
		return chain.Classify(err)
	}
}
