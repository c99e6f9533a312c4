package solana

import (
	"context"
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/vietddude/wallet-exporter/internal/infra/chain"
)

// SolanaAdapter reads native balances (lamports) at finalized commitment.
type SolanaAdapter struct {
	network string
	client  *rpc.Client
}

func NewSolanaAdapter(network, url string) *SolanaAdapter {
	return &SolanaAdapter{
		network: network,
		client:  rpc.New(url),
	}
}

func (a *SolanaAdapter) Name() string {
	return a.network
}

func (a *SolanaAdapter) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	pubkey, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return nil, chain.Wrap(chain.KindParse, "parse address", fmt.Errorf("invalid Solana address %q: %w", address, err))
	}

	out, err := a.client.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return nil, chain.Wrap(chain.Classify(err), "getBalance", err)
	}
	if out == nil {
		return nil, chain.Wrap(chain.KindParse, "getBalance", fmt.Errorf("empty result"))
	}
	return new(big.Int).SetUint64(out.Value), nil
}

func (a *SolanaAdapter) Close() error {
	return a.client.Close()
}
