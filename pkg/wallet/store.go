package wallet

import (
	"context"
	"errors"
)

// ErrChallengeNotFound is returned when no challenge exists for a wallet.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrConnectionNotFound is returned when a wallet has no stored connection.
var ErrConnectionNotFound = errors.New("wallet connection not found")

// Store persists wallet challenges and connections.
type Store interface {
	// SaveChallenge stores a challenge, replacing any previous one for the wallet.
	SaveChallenge(ctx context.Context, challenge *Challenge) error
	GetChallenge(ctx context.Context, wallet string) (*Challenge, error)
	DeleteChallenge(ctx context.Context, wallet string) error

	// UpsertConnection stores or refreshes a wallet connection.
	UpsertConnection(ctx context.Context, conn *Connection) error
	GetConnection(ctx context.Context, wallet string) (*Connection, error)
	DeleteConnection(ctx context.Context, wallet string) error
}
