package domain

import (
	"fmt"
	"strings"
	"time"
)

type NetworkType string

const (
	NetworkTypeEVM     NetworkType = "evm"
	NetworkTypeBitcoin NetworkType = "bitcoin"
	NetworkTypeSolana  NetworkType = "solana"
)

// NativeDecimals maps a chain family to the exponent between its smallest unit
// and its native unit (wei/ETH, sat/BTC, lamport/SOL).
var NativeDecimals = map[NetworkType]int32{
	NetworkTypeEVM:     18,
	NetworkTypeBitcoin: 8,
	NetworkTypeSolana:  9,
}

// ParseNetworkType normalizes a family name. Empty means evm.
func ParseNetworkType(s string) (NetworkType, error) {
	t := NetworkType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return NetworkTypeEVM, nil
	}
	if _, ok := NativeDecimals[t]; !ok {
		return "", fmt.Errorf("unknown network type %q", s)
	}
	return t, nil
}

// Network is a logical chain name bound to an RPC endpoint.
type Network struct {
	Name string
	URL  string
	Type NetworkType
	// Decimals overrides the family default when non-zero.
	Decimals int32
	// Timeout bounds a single balance query. Zero means no timeout.
	Timeout time.Duration
	// IncludeMempool adds unconfirmed outputs for bitcoin networks.
	IncludeMempool bool
}

// NativeDecimals returns the decimals used to convert this network's smallest unit.
func (n Network) NativeDecimals() int32 {
	if n.Decimals > 0 {
		return n.Decimals
	}
	if d, ok := NativeDecimals[n.Type]; ok {
		return d
	}
	return NativeDecimals[NetworkTypeEVM]
}
