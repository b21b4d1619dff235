// Package tola defines the domain types for the TOLA token transaction ledger:
// the transaction record, its status state machine, and query directions.
package tola

import (
	"time"
)

// Status represents the current state of a logged token transaction
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known transaction status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status. Confirmed and failed
// rows are never moved again.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// CanTransition reports whether a row may move from s to next.
// The only legal transitions are pending -> confirmed and pending -> failed.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Valid() && next != StatusPending
}

// Direction selects which side of a wallet's transactions a query covers
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionAll      Direction = "all"
)

// Valid reports whether d is a known query direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIncoming, DirectionOutgoing, DirectionAll:
		return true
	}
	return false
}

// Transaction represents one attempted on-chain token operation.
// Rows are append-only: a row is written once per attempt and only its
// status (plus note) may change afterwards, subject to the state machine.
//
// The log is a non-authoritative audit trail. Balances are always read
// live from the chain, never derived from these rows.
type Transaction struct {
	ID           int64
	TxHash       string
	FromWallet   string
	ToWallet     string
	Amount       string // decimal token units, not base units
	TokenAddress string
	Network      string
	Status       Status
	Note         string

	// Optional back-reference to an order, artwork or artist record.
	// Lookup-only; no referential integrity is enforced.
	RelatedEntityID   int64
	RelatedEntityType string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntityType values used in RelatedEntityType.
const (
	EntityOrder   = "order"
	EntityArtwork = "artwork"
	EntityArtist  = "artist"
)
