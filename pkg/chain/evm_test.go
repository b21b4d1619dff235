package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/config"
)

// Hardhat's first well-known development key. Never holds real funds.
const testSignerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// fakeRPC answers every JSON-RPC request with the given hex result, echoing
// the request id so the client accepts the response.
func fakeRPC(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("malformed rpc request: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%q}`, req.ID, result)
	}))
}

func TestCallContract_RecordsCallDuration(t *testing.T) {
	balance := common.LeftPadBytes(big.NewInt(42).Bytes(), 32)
	srv := fakeRPC(t, "0x"+hex.EncodeToString(balance))
	defer srv.Close()

	client, err := NewEVMClient(&config.ChainConfig{RPCURL: srv.URL, ChainID: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEVMClient() failed: %v", err)
	}
	defer client.Close()

	before := testutil.CollectAndCount(metrics.ChainCallDuration)

	raw, err := client.CallContract(context.Background(), Call{
		Contract: "0x3333333333333333333333333333333333333333",
		Method:   MethodBalanceOf,
		Params:   []any{common.HexToAddress("0x1111111111111111111111111111111111111111")},
	})
	if err != nil {
		t.Fatalf("CallContract() failed: %v", err)
	}
	got, err := UnpackBigInt(MethodBalanceOf, raw)
	if err != nil {
		t.Fatalf("UnpackBigInt() failed: %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("balance mismatch: got %s want 42", got)
	}

	if after := testutil.CollectAndCount(metrics.ChainCallDuration); after <= before {
		t.Fatalf("expected a call duration sample for %s, series count stayed at %d", MethodBalanceOf, after)
	}
}

func TestSendTransaction_RecordsCallDuration(t *testing.T) {
	// "0x1" satisfies the nonce and gas price lookups; the raw transaction
	// submission discards the result.
	srv := fakeRPC(t, "0x1")
	defer srv.Close()

	cfg := &config.ChainConfig{
		RPCURL:           srv.URL,
		ChainID:          1,
		GasLimit:         300000,
		SignerPrivateKey: testSignerKey,
	}
	client, err := NewEVMClient(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEVMClient() failed: %v", err)
	}
	defer client.Close()

	before := testutil.CollectAndCount(metrics.ChainCallDuration)

	hash, err := client.SendTransaction(context.Background(), Call{
		Contract: "0x3333333333333333333333333333333333333333",
		Method:   MethodTransfer,
		Params:   []any{common.HexToAddress("0x2222222222222222222222222222222222222222"), big.NewInt(1000)},
	})
	if err != nil {
		t.Fatalf("SendTransaction() failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected a transaction hash")
	}

	if after := testutil.CollectAndCount(metrics.ChainCallDuration); after <= before {
		t.Fatalf("expected a call duration sample for %s, series count stayed at %d", MethodTransfer, after)
	}
}
