package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the wallet store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) SaveChallenge(ctx context.Context, challenge *Challenge) error {
	dao := toChallengeDao(challenge)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (wallet) DO UPDATE").
		Set("network = EXCLUDED.network").
		Set("provider = EXCLUDED.provider").
		Set("nonce = EXCLUDED.nonce").
		Set("message = EXCLUDED.message").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

func (s *pgStore) GetChallenge(ctx context.Context, wallet string) (*Challenge, error) {
	dao := new(ChallengeDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("wallet = ?", wallet).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return toChallenge(dao), nil
}

func (s *pgStore) DeleteChallenge(ctx context.Context, wallet string) error {
	_, err := s.db.NewDelete().
		Model((*ChallengeDao)(nil)).
		Where("wallet = ?", wallet).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

func (s *pgStore) UpsertConnection(ctx context.Context, conn *Connection) error {
	dao := toConnectionDao(conn)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (wallet) DO UPDATE").
		Set("network = EXCLUDED.network").
		Set("provider = EXCLUDED.provider").
		Set("verified = EXCLUDED.verified").
		Set("connected_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet connection: %w", err)
	}
	return nil
}

func (s *pgStore) GetConnection(ctx context.Context, wallet string) (*Connection, error) {
	dao := new(ConnectionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("wallet = ?", wallet).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to get wallet connection: %w", err)
	}
	return toConnection(dao), nil
}

func (s *pgStore) DeleteConnection(ctx context.Context, wallet string) error {
	_, err := s.db.NewDelete().
		Model((*ConnectionDao)(nil)).
		Where("wallet = ?", wallet).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete wallet connection: %w", err)
	}
	return nil
}
