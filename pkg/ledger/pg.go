package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/vortexartec/tola-ledger/pkg/tola"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the transaction log store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// validateRequired checks the fields every logged transaction must carry.
func validateRequired(tx *tola.Transaction) error {
	switch {
	case tx.TxHash == "":
		return fmt.Errorf("%w: tx_hash", ErrMissingField)
	case tx.FromWallet == "":
		return fmt.Errorf("%w: from_wallet", ErrMissingField)
	case tx.ToWallet == "":
		return fmt.Errorf("%w: to_wallet", ErrMissingField)
	case tx.Amount == "":
		return fmt.Errorf("%w: amount", ErrMissingField)
	case tx.TokenAddress == "":
		return fmt.Errorf("%w: token_address", ErrMissingField)
	case tx.Network == "":
		return fmt.Errorf("%w: network", ErrMissingField)
	}

	amount, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", tx.Amount, err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", tx.Amount)
	}

	return nil
}

func (s *pgStore) Log(ctx context.Context, tx *tola.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is nil", ErrMissingField)
	}
	if err := validateRequired(tx); err != nil {
		return err
	}

	if tx.Status == "" {
		tx.Status = tola.StatusPending
	}
	if !tx.Status.Valid() {
		return fmt.Errorf("unknown status %q", tx.Status)
	}

	dao := toTransactionDao(tx)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTxHash, tx.TxHash)
		}
		return fmt.Errorf("failed to log transaction: %w", err)
	}

	tx.ID = dao.ID
	tx.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) GetByTxHash(ctx context.Context, txHash string) (*tola.Transaction, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("tx_hash = ?", txHash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return toTransaction(dao), nil
}

// UpdateStatus moves a transaction along the status state machine.
// Terminal rows are never rewritten.
func (s *pgStore) UpdateStatus(ctx context.Context, txHash string, status tola.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(TransactionDao)
		err := tx.NewSelect().
			Model(dao).
			Column("status").
			Where("tx_hash = ?", txHash).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to read transaction status: %w", err)
		}

		current := tola.Status(dao.Status)
		if !current.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
		}

		_, err = tx.NewUpdate().
			Model((*TransactionDao)(nil)).
			Set("status = ?", string(status)).
			Set("updated_at = NOW()").
			Where("tx_hash = ?", txHash).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}
		return nil
	})
}

func (s *pgStore) ListByWallet(ctx context.Context, wallet string, opts ...QueryOption) ([]*tola.Transaction, error) {
	options := applyOptions(opts)

	var daos []TransactionDao
	query := s.db.NewSelect().Model(&daos)
	query = applyWalletFilter(query, wallet, options)
	query = query.Order("created_at DESC", "id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*tola.Transaction, len(daos))
	for i := range daos {
		txs[i] = toTransaction(&daos[i])
	}
	return txs, nil
}

func (s *pgStore) CountByWallet(ctx context.Context, wallet string, opts ...QueryOption) (int, error) {
	options := applyOptions(opts)

	query := s.db.NewSelect().Model((*TransactionDao)(nil))
	query = applyWalletFilter(query, wallet, options)

	count, err := query.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (s *pgStore) ListPending(ctx context.Context, limit int) ([]*tola.Transaction, error) {
	var daos []TransactionDao
	query := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(tola.StatusPending)).
		Order("created_at ASC", "id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}

	txs := make([]*tola.Transaction, len(daos))
	for i := range daos {
		txs[i] = toTransaction(&daos[i])
	}
	return txs, nil
}

func applyOptions(opts []QueryOption) *QueryOptions {
	options := &QueryOptions{Direction: tola.DirectionAll}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func applyWalletFilter(query *bun.SelectQuery, wallet string, options *QueryOptions) *bun.SelectQuery {
	switch options.Direction {
	case tola.DirectionIncoming:
		query = query.Where("to_wallet = ?", wallet)
	case tola.DirectionOutgoing:
		query = query.Where("from_wallet = ?", wallet)
	default:
		query = query.Where("from_wallet = ? OR to_wallet = ?", wallet, wallet)
	}

	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}
	return query
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
