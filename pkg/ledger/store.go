// Package ledger persists the token transaction log.
package ledger

import (
	"context"
	"errors"

	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// ErrTransactionNotFound is returned when a transaction lookup finds no matching record.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrMissingField is returned when a transaction is logged without a required field.
var ErrMissingField = errors.New("missing required transaction field")

// ErrInvalidTransition is returned when a status update would leave a terminal
// status or target an unknown one.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDuplicateTxHash is returned when a transaction hash is logged twice.
var ErrDuplicateTxHash = errors.New("transaction hash already logged")

// Store defines the interface for transaction log persistence
type Store interface {
	// Log appends a transaction record. Status defaults to pending when unset.
	Log(ctx context.Context, tx *tola.Transaction) error
	GetByTxHash(ctx context.Context, txHash string) (*tola.Transaction, error)
	UpdateStatus(ctx context.Context, txHash string, status tola.Status) error
	// ListByWallet returns transactions touching the wallet, newest first.
	ListByWallet(ctx context.Context, wallet string, opts ...QueryOption) ([]*tola.Transaction, error)
	CountByWallet(ctx context.Context, wallet string, opts ...QueryOption) (int, error)
	// ListPending returns up to limit pending transactions, oldest first.
	ListPending(ctx context.Context, limit int) ([]*tola.Transaction, error)
}

// QueryOptions defines options for querying the transaction log
type QueryOptions struct {
	Direction tola.Direction
	Status    *tola.Status
	Limit     int
	Offset    int
}

// QueryOption is a functional option for querying the transaction log
type QueryOption func(*QueryOptions)

// WithDirection filters by transfer direction relative to the wallet
func WithDirection(direction tola.Direction) QueryOption {
	return func(opts *QueryOptions) {
		opts.Direction = direction
	}
}

// WithStatus filters by transaction status
func WithStatus(status tola.Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithLimit caps the number of returned rows
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}

// WithOffset skips the first offset rows
func WithOffset(offset int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Offset = offset
	}
}
