// Package allocator computes per-participant shares from a bill total.
// All arithmetic is exact integer math on minor units; an allocation always
// sums to the total, down to the last minor unit.
package allocator

import (
	"fmt"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
)

// Policy selects how a bill total is divided among participants.
type Policy string

const (
	// PolicyEqual divides the total evenly, distributing the remainder
	// one minor unit at a time to the first participants in input order.
	PolicyEqual Policy = "equal"
	// PolicyManual uses caller-supplied shares, validated to sum exactly
	// to the total.
	PolicyManual Policy = "manual"
)

// Valid reports whether the policy is one of the known values.
func (p Policy) Valid() bool {
	return p == PolicyEqual || p == PolicyManual
}

// EqualSplit divides total across n participants. The remainder
// (total mod n) goes one minor unit at a time to the first participants in
// input order, so identical inputs always produce the identical allocation.
func EqualSplit(total money.Money, n int) ([]money.Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", models.ErrNoParticipants, n)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive, got %d", models.ErrInvalidAmount, total.Amount)
	}

	base := total.Amount / int64(n)
	remainder := total.Amount % int64(n)

	shares := make([]money.Money, n)
	for i := range shares {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares[i] = money.Money{Amount: amount, Currency: total.Currency}
	}
	return shares, nil
}

// ManualSplit validates caller-supplied shares against the total. The sum
// must match exactly; "close enough" is a rounding bug waiting to happen.
func ManualSplit(total money.Money, shares []money.Money) ([]money.Money, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: got 0", models.ErrNoParticipants)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive, got %d", models.ErrInvalidAmount, total.Amount)
	}

	var sum int64
	for i, share := range shares {
		if share.Amount < 0 {
			return nil, fmt.Errorf("%w: share %d is negative (%d)", models.ErrInvalidAmount, i, share.Amount)
		}
		if !share.SameCurrency(total) {
			return nil, fmt.Errorf("%w: share %d is %s, bill is %s", money.ErrCurrencyMismatch, i, share.Currency, total.Currency)
		}
		sum += share.Amount
	}
	if sum != total.Amount {
		return nil, fmt.Errorf("%w: shares sum to %d, total is %d", models.ErrShareMismatch, sum, total.Amount)
	}

	out := make([]money.Money, len(shares))
	copy(out, shares)
	return out, nil
}
