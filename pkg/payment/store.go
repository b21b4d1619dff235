package payment

import (
	"context"
	"errors"
)

// ErrIntentNotFound is returned when no intent exists for the given id.
var ErrIntentNotFound = errors.New("payment intent not found")

// Store persists payment intents and their steps.
type Store interface {
	// CreateIntent inserts the intent and all of its planned steps.
	CreateIntent(ctx context.Context, intent *Intent) error

	// GetIntent loads an intent with its steps ordered by position.
	GetIntent(ctx context.Context, id string) (*Intent, error)

	// UpdateIntentStatus moves the intent to the given status.
	UpdateIntentStatus(ctx context.Context, id string, status IntentStatus) error

	// UpdateStep records the outcome of a single step.
	UpdateStep(ctx context.Context, stepID int64, status StepStatus, txHash, stepErr string) error

	// ListByStatus returns intents (with steps) in the given status,
	// oldest first.
	ListByStatus(ctx context.Context, status IntentStatus, limit int) ([]*Intent, error)
}
