// Package payment implements the checkout payment saga. Each order is
// recorded as a durable intent with planned transfer steps before any
// chain call is made, so interrupted payments can be resumed.
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentStatus is the lifecycle state of a payment intent.
type IntentStatus string

const (
	IntentPending        IntentStatus = "pending"
	IntentProcessing     IntentStatus = "processing"
	IntentCompleted      IntentStatus = "completed"
	IntentFailed         IntentStatus = "failed"
	IntentNeedsAttention IntentStatus = "needs_attention"
)

// StepStatus is the lifecycle state of a single transfer step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepKind distinguishes the artist payout from the marketplace commission.
type StepKind string

const (
	StepArtistTransfer     StepKind = "artist_transfer"
	StepCommissionTransfer StepKind = "commission_transfer"
)

// OrderItem is a single line item of an order being paid for.
type OrderItem struct {
	ItemID       int64
	ArtistWallet string
	Price        decimal.Decimal
	Quantity     int64
}

// Order is the input to ProcessOrder.
type Order struct {
	OrderID     int64
	BuyerWallet string
	Items       []OrderItem
}

// Intent is a durable record of a payment for one order.
type Intent struct {
	ID          string
	OrderID     int64
	BuyerWallet string
	Total       decimal.Decimal
	Status      IntentStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Steps       []*Step
}

// Step is a single planned transfer within an intent. Steps execute in
// Position order; completion marks make re-driving idempotent.
type Step struct {
	ID       int64
	IntentID string
	ItemID   int64
	Position int
	Kind     StepKind
	ToWallet string
	Amount   decimal.Decimal
	Status   StepStatus
	TxHash   string
	Error    string
}
