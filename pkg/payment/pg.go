package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the payment store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateIntent(ctx context.Context, intent *Intent) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		intentDao := toIntentDao(intent)
		if _, err := tx.NewInsert().Model(intentDao).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert payment intent: %w", err)
		}

		for _, step := range intent.Steps {
			stepDao := toStepDao(step)
			if _, err := tx.NewInsert().Model(stepDao).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert payment step: %w", err)
			}
			step.ID = stepDao.ID
		}
		intent.CreatedAt = intentDao.CreatedAt
		return nil
	})
}

func (s *pgStore) GetIntent(ctx context.Context, id string) (*Intent, error) {
	dao := new(IntentDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Steps", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("pi.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return toIntent(dao)
}

func (s *pgStore) UpdateIntentStatus(ctx context.Context, id string, status IntentStatus) error {
	now := time.Now()
	res, err := s.db.NewUpdate().
		Model((*IntentDao)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update payment intent status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrIntentNotFound
	}
	return nil
}

func (s *pgStore) UpdateStep(ctx context.Context, stepID int64, status StepStatus, txHash, stepErr string) error {
	q := s.db.NewUpdate().
		Model((*StepDao)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", stepID)
	if txHash != "" {
		q = q.Set("tx_hash = ?", txHash)
	}
	if stepErr != "" {
		q = q.Set("error = ?", stepErr)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update payment step: %w", err)
	}
	return nil
}

func (s *pgStore) ListByStatus(ctx context.Context, status IntentStatus, limit int) ([]*Intent, error) {
	var daos []*IntentDao
	err := s.db.NewSelect().
		Model(&daos).
		Relation("Steps", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("pi.status = ?", string(status)).
		Order("pi.created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}

	intents := make([]*Intent, 0, len(daos))
	for _, dao := range daos {
		intent, err := toIntent(dao)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}
