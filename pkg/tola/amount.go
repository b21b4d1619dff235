package tola

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest supported token decimals value (the ERC-20
// standard maximum).
const MaxDecimals = 18

// DefaultDecimals is used when the token contract's decimals cannot be read.
const DefaultDecimals = 18

// ToBaseUnits converts a human-readable token amount to the integer base
// units used in on-chain calls (amount * 10^decimals). The amount must be
// positive and must not carry more fractional digits than decimals allows.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("decimals out of range: %d", decimals)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %s", amount)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	return shifted.BigInt(), nil
}

// FromBaseUnits converts integer base units back to a human-readable token
// amount, with trailing zeros trimmed.
func FromBaseUnits(raw *big.Int, decimals int) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("nil base amount")
	}
	if decimals < 0 || decimals > MaxDecimals {
		return "", fmt.Errorf("decimals out of range: %d", decimals)
	}

	return decimal.NewFromBigInt(raw, -int32(decimals)).String(), nil
}

// CompareAmounts compares two decimal amount strings, returning -1, 0 or 1.
func CompareAmounts(a, b string) (int, error) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return 0, fmt.Errorf("parse decimal: %w", err)
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return 0, fmt.Errorf("parse decimal: %w", err)
	}
	return da.Cmp(db), nil
}
