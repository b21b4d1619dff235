// Package chain defines the blockchain collaborator contract and its EVM
// implementation. The token service only sees the Client interface; the
// network, ABI packing and signing details stay behind it.
package chain

import (
	"context"
	"errors"
)

// Contract method names understood by the packer.
const (
	MethodBalanceOf         = "balanceOf"
	MethodDecimals          = "decimals"
	MethodName              = "name"
	MethodSymbol            = "symbol"
	MethodTransfer          = "transfer"
	MethodApprove           = "approve"
	MethodSetArtworkForSale = "setArtworkForSale"
	MethodPurchaseArtwork   = "purchaseArtwork"
	MethodVerifyArtist      = "verifyArtist"
)

// ErrNoSigner is returned when a write is attempted without a configured
// signing key.
var ErrNoSigner = errors.New("no signing key configured")

// TxState is the on-chain state of a submitted transaction.
type TxState int

const (
	// TxPending means the transaction has no receipt yet.
	TxPending TxState = iota
	// TxSuccess means the transaction was mined and succeeded.
	TxSuccess
	// TxFailed means the transaction was mined and reverted.
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxSuccess:
		return "success"
	case TxFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Call describes one contract invocation.
type Call struct {
	// Contract is the hex address of the target contract.
	Contract string
	// Method is one of the Method* constants.
	Method string
	// Params are the ABI arguments in declaration order, using go-ethereum
	// types (common.Address, *big.Int).
	Params []any
	// From is the caller address for reads. Ignored for writes, which are
	// signed with the service key.
	From string
	// GasLimit overrides the configured gas limit when non-zero.
	GasLimit uint64
}

// Client is the blockchain collaborator.
type Client interface {
	// CallContract executes a read and returns the raw ABI-encoded result.
	// Decode it with Unpack* helpers from this package.
	CallContract(ctx context.Context, call Call) ([]byte, error)
	// SendTransaction signs and submits a state-changing call and returns
	// the transaction hash without waiting for inclusion.
	SendTransaction(ctx context.Context, call Call) (string, error)
	// TxStatus reports the receipt state of a previously submitted transaction.
	TxStatus(ctx context.Context, txHash string) (TxState, error)
}
