package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/vietddude/wallet-exporter/internal/infra/chain"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []any           `json:"params"`
}

// newRPCServer answers getBalance with result, or with an error object when
// rpcErr is set.
func newRPCServer(t *testing.T, address string, lamports uint64, rpcErr string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Method != "getBalance" {
			t.Errorf("unexpected method %s", req.Method)
		}
		if len(req.Params) == 0 || req.Params[0] != address {
			t.Errorf("unexpected params %v", req.Params)
		}

		w.Header().Set("Content-Type", "application/json")
		if rpcErr != "" {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32602,"message":%q}}`, req.ID, rpcErr)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":{"context":{"slot":42},"value":%d}}`, req.ID, lamports)
	}))
}

func TestSolanaAdapter_GetBalance(t *testing.T) {
	address := solanago.NewWallet().PublicKey().String()
	server := newRPCServer(t, address, 2_500_000_000, "")
	defer server.Close()

	adapter := NewSolanaAdapter("solana", server.URL)
	defer adapter.Close()

	balance, err := adapter.GetBalance(context.Background(), address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Uint64() != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %s", balance)
	}
}

func TestSolanaAdapter_InvalidAddress(t *testing.T) {
	adapter := NewSolanaAdapter("solana", "http://127.0.0.1:1")
	_, err := adapter.GetBalance(context.Background(), "not-base58-0OIl")
	if got := chain.KindOf(err); got != chain.KindParse {
		t.Errorf("expected parse failure, got %s (%v)", got, err)
	}
}

func TestSolanaAdapter_RPCError(t *testing.T) {
	address := solanago.NewWallet().PublicKey().String()
	server := newRPCServer(t, address, 0, "Invalid param")
	defer server.Close()

	adapter := NewSolanaAdapter("solana", server.URL)
	_, err := adapter.GetBalance(context.Background(), address)
	if got := chain.KindOf(err); got != chain.KindQuery {
		t.Errorf("expected query failure, got %s (%v)", got, err)
	}
}
