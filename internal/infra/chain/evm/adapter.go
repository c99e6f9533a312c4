package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vietddude/wallet-exporter/internal/infra/chain"
)

// EVMAdapter reads native balances (wei) from an Ethereum-compatible node.
type EVMAdapter struct {
	network string
	url     string

	mu     sync.Mutex
	client *ethclient.Client
}

func NewEVMAdapter(network, url string) *EVMAdapter {
	return &EVMAdapter{
		network: network,
		url:     url,
	}
}

func (a *EVMAdapter) Name() string {
	return a.network
}

// GetBalance returns the latest-block balance of address in wei.
func (a *EVMAdapter) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, chain.Wrap(chain.KindParse, "parse address", fmt.Errorf("invalid EVM address %q", address))
	}

	client, err := a.conn(ctx)
	if err != nil {
		return nil, chain.Wrap(chain.KindConnection, "dial", err)
	}

	balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, chain.Wrap(chain.Classify(err), "eth_getBalance", err)
	}
	return balance, nil
}

// conn dials lazily so an unreachable endpoint fails its pairs instead of
// the whole process.
func (a *EVMAdapter) conn(ctx context.Context) (*ethclient.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	client, err := ethclient.DialContext(ctx, a.url)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *EVMAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	return nil
}
