package chain

import (
	"context"
	"math/big"
)

// Adapter queries the native balance of an address on one network.
// Implementations return *FetchError so callers can log the failure kind.
type Adapter interface {
	// GetBalance returns the balance in the chain's smallest unit
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// Name returns the network name this adapter is bound to
	Name() string

	// Close releases the underlying client
	Close() error
}
