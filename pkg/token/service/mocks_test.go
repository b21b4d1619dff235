package service

import (
	"context"
	"errors"
	"math/big"

	"github.com/vortexartec/tola-ledger/pkg/chain"
	"github.com/vortexartec/tola-ledger/pkg/ledger"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// mockChain is a func-field mock of the chain collaborator that records
// every call it receives.
type mockChain struct {
	callContractFn    func(ctx context.Context, call chain.Call) ([]byte, error)
	sendTransactionFn func(ctx context.Context, call chain.Call) (string, error)
	txStatusFn        func(ctx context.Context, txHash string) (chain.TxState, error)

	reads  []chain.Call
	writes []chain.Call
}

func (m *mockChain) CallContract(ctx context.Context, call chain.Call) ([]byte, error) {
	m.reads = append(m.reads, call)
	if m.callContractFn == nil {
		return nil, errors.New("callContractFn not set")
	}
	return m.callContractFn(ctx, call)
}

func (m *mockChain) SendTransaction(ctx context.Context, call chain.Call) (string, error) {
	m.writes = append(m.writes, call)
	if m.sendTransactionFn == nil {
		return "", errors.New("sendTransactionFn not set")
	}
	return m.sendTransactionFn(ctx, call)
}

func (m *mockChain) TxStatus(ctx context.Context, txHash string) (chain.TxState, error) {
	if m.txStatusFn == nil {
		return chain.TxPending, nil
	}
	return m.txStatusFn(ctx, txHash)
}

// readCount returns the number of reads for a given method.
func (m *mockChain) readCount(method string) int {
	n := 0
	for _, call := range m.reads {
		if call.Method == method {
			n++
		}
	}
	return n
}

// mockStore is an in-memory ledger.Store that records logged rows.
type mockStore struct {
	logFn func(ctx context.Context, tx *tola.Transaction) error

	rows []*tola.Transaction
}

func (m *mockStore) Log(ctx context.Context, tx *tola.Transaction) error {
	if m.logFn != nil {
		if err := m.logFn(ctx, tx); err != nil {
			return err
		}
	}
	m.rows = append(m.rows, tx)
	return nil
}

func (m *mockStore) GetByTxHash(_ context.Context, txHash string) (*tola.Transaction, error) {
	for _, row := range m.rows {
		if row.TxHash == txHash {
			return row, nil
		}
	}
	return nil, ledger.ErrTransactionNotFound
}

func (m *mockStore) UpdateStatus(_ context.Context, txHash string, status tola.Status) error {
	for _, row := range m.rows {
		if row.TxHash == txHash {
			if !row.Status.CanTransition(status) {
				return ledger.ErrInvalidTransition
			}
			row.Status = status
			return nil
		}
	}
	return ledger.ErrTransactionNotFound
}

func (m *mockStore) ListByWallet(_ context.Context, wallet string, _ ...ledger.QueryOption) ([]*tola.Transaction, error) {
	var out []*tola.Transaction
	for _, row := range m.rows {
		if row.FromWallet == wallet || row.ToWallet == wallet {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockStore) CountByWallet(ctx context.Context, wallet string, opts ...ledger.QueryOption) (int, error) {
	rows, err := m.ListByWallet(ctx, wallet, opts...)
	return len(rows), err
}

func (m *mockStore) ListPending(_ context.Context, limit int) ([]*tola.Transaction, error) {
	var out []*tola.Transaction
	for _, row := range m.rows {
		if row.Status == tola.StatusPending {
			out = append(out, row)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ABI output encoding helpers for mock chain reads.

func encodeUint8Word(v uint8) []byte {
	word := make([]byte, 32)
	word[31] = v
	return word
}

func encodeBigIntWord(v *big.Int) []byte {
	word := make([]byte, 32)
	v.FillBytes(word)
	return word
}
