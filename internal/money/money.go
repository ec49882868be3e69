// Package money provides the fixed-point amount type used for all ledger
// arithmetic. Amounts are stored as int64 minor units (cents for USD, 6
// decimals for USDC, etc.) tagged with a currency code. No floating point
// is used anywhere in the package.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidDecimal   = errors.New("invalid decimal amount")
)

// scales maps currency codes to the number of decimal places of their minor
// unit. Unknown currencies default to 2.
var scales = map[string]int32{
	"USD":  2,
	"EUR":  2,
	"INR":  2,
	"USDC": 6,
	"USDT": 6,
}

// Scale returns the minor-unit decimal places for a currency code.
func Scale(currency string) int32 {
	if s, ok := scales[currency]; ok {
		return s
	}
	return 2
}

// Money is an amount in a currency's smallest unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New builds a Money value, rejecting negative amounts.
func New(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// SameCurrency reports whether two amounts share a currency tag.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == o.Currency
}

// Add returns m + o. Both amounts must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}

// Cmp compares m against o: -1 if m < o, 0 if equal, +1 if m > o.
// Both amounts must share a currency.
func (m Money) Cmp(o Money) (int, error) {
	if !m.SameCurrency(o) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	switch {
	case m.Amount < o.Amount:
		return -1, nil
	case m.Amount > o.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// Covers reports whether m is at least o. Amounts in different currencies
// never cover each other.
func (m Money) Covers(o Money) bool {
	return m.SameCurrency(o) && m.Amount >= o.Amount
}

// Parse converts a display-decimal string (e.g. "45.00") into minor units
// for the given currency, exactly. Fractions finer than the currency's
// minor unit are rejected rather than rounded.
func Parse(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, value)
	}
	shifted := d.Shift(Scale(currency))
	if !shifted.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has sub-minor-unit precision for %s", ErrInvalidDecimal, value, currency)
	}
	if shifted.Sign() < 0 {
		return Money{}, fmt.Errorf("%w: %q", ErrNegativeAmount, value)
	}
	return Money{Amount: shifted.IntPart(), Currency: currency}, nil
}

// String formats the amount as a display decimal, e.g. "45.00 USD".
// Display formatting belongs to boundaries (API responses, logs); ledger
// arithmetic never round-trips through this representation.
func (m Money) String() string {
	scale := Scale(m.Currency)
	return fmt.Sprintf("%s %s", decimal.New(m.Amount, -scale).StringFixed(scale), m.Currency)
}
