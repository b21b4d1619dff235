package tola

import (
	"errors"
	"fmt"
)

// Kind classifies a failed token operation. Callers branch on the kind
// rather than inspecting error strings.
type Kind string

const (
	KindInvalidInput             Kind = "invalid_input"
	KindBalanceError             Kind = "balance_error"
	KindTransferError            Kind = "transfer_error"
	KindApprovalError            Kind = "approval_error"
	KindListingError             Kind = "listing_error"
	KindPurchaseError            Kind = "purchase_error"
	KindVerificationError        Kind = "verification_error"
	KindMarketplaceNotConfigured Kind = "marketplace_not_configured"
	KindPermissionDenied         Kind = "permission_denied"
)

// Error is the tagged error type returned by every token handler operation.
// It carries the operation kind and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tagged error with a static message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError tags an underlying error with an operation kind and context message.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or the empty kind when err is not a
// tagged ledger error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
