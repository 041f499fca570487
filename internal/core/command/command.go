// Package command normalizes and validates raw sell command input.
// Pure functions only; no I/O and no side effects
package command

import (
	"strings"

	perr "tradepost/internal/platform/errors"
)

const (
	// DefaultAmount is used when the caller omits the amount
	DefaultAmount = 1

	// MaxAmount is the upper bound for a single sell
	MaxAmount = 1000
)

// ValidatedRequest is the normalized form of a sell command
type ValidatedRequest struct {
	ItemRef string
	Amount  int
}

// Validate normalizes and checks the raw item reference and amount.
// A nil amount defaults to 1. A provided amount is taken absolute, then must
// fall in [1, MaxAmount]. An empty reference is rejected
func Validate(itemRefRaw string, amountRaw *int) (ValidatedRequest, error) {
	ref := strings.TrimSpace(itemRefRaw)
	if ref == "" {
		return ValidatedRequest{}, perr.WithField(
			perr.Validationf("item reference is required"), "itemid")
	}

	amount := DefaultAmount
	if amountRaw != nil {
		amount = *amountRaw
		if amount < 0 {
			amount = -amount
		}
	}
	if amount <= 0 || amount > MaxAmount {
		return ValidatedRequest{}, perr.WithField(
			perr.Validationf("amount must be between 1 and %d", MaxAmount), "amount")
	}

	return ValidatedRequest{ItemRef: ref, Amount: amount}, nil
}
