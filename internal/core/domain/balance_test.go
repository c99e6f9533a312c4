package domain

import (
	"math"
	"math/big"
	"testing"
)

func TestToNative(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	big1234, _ := new(big.Int).SetString("1234500000000000000", 10)

	tests := []struct {
		name     string
		amount   *big.Int
		decimals int32
		want     float64
	}{
		{"one ether", oneEth, 18, 1},
		{"fractional ether", big1234, 18, 1.2345},
		{"one wei", big.NewInt(1), 18, 1e-18},
		{"zero", big.NewInt(0), 18, 0},
		{"nil", nil, 18, 0},
		{"satoshis", big.NewInt(150000000), 8, 1.5},
		{"lamports", big.NewInt(2500000000), 9, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNative(tt.amount, tt.decimals)
			if math.Abs(got-tt.want) > 1e-12*math.Max(1, tt.want) {
				t.Errorf("ToNative(%v, %d) = %v, want %v", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatNative(t *testing.T) {
	if got := FormatNative(big.NewInt(1), 18); got != "0.000000000000000001" {
		t.Errorf("unexpected format: %s", got)
	}
	if got := FormatNative(big.NewInt(150000000), 8); got != "1.5" {
		t.Errorf("unexpected format: %s", got)
	}
}

func TestNetwork_NativeDecimals(t *testing.T) {
	if d := (Network{Type: NetworkTypeEVM}).NativeDecimals(); d != 18 {
		t.Errorf("expected 18, got %d", d)
	}
	if d := (Network{Type: NetworkTypeBitcoin}).NativeDecimals(); d != 8 {
		t.Errorf("expected 8, got %d", d)
	}
	if d := (Network{Type: NetworkTypeEVM, Decimals: 6}).NativeDecimals(); d != 6 {
		t.Errorf("expected override 6, got %d", d)
	}
}

func TestParseNetworkType(t *testing.T) {
	if nt, err := ParseNetworkType(""); err != nil || nt != NetworkTypeEVM {
		t.Errorf("expected evm default, got %q, %v", nt, err)
	}
	if nt, err := ParseNetworkType("Solana"); err != nil || nt != NetworkTypeSolana {
		t.Errorf("expected solana, got %q, %v", nt, err)
	}
	if _, err := ParseNetworkType("cosmos"); err == nil {
		t.Error("expected error for unknown type")
	}
}
