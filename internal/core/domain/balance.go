package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSample is the latest observation for one (network, wallet) pair.
type BalanceSample struct {
	Network    string
	Wallet     string
	Address    string
	Amount     *big.Int // smallest unit
	Value      float64  // native unit
	ObservedAt time.Time
}

// ToNative converts an integer amount in the smallest unit to the native unit,
// i.e. amount / 10^decimals.
func ToNative(amount *big.Int, decimals int32) float64 {
	if amount == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(amount, -decimals).Float64()
	return f
}

// FormatNative renders the exact native-unit value without float rounding.
func FormatNative(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}
