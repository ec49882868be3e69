package models

import "github.com/mmynk/splitpay/internal/money"

// Status classifies a participant's payment progress against their share.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUnderpaid Status = "underpaid"
	StatusPaid      Status = "paid"
	StatusOverpaid  Status = "overpaid"
)

// Participant is one party owing a fixed share of a bill.
type Participant struct {
	// ID is the participant's principal (wallet address or user ID).
	// Unique within a bill.
	ID string

	// Name and Contact are descriptive only; never used for authorization.
	Name    string
	Contact string

	// Owed is the participant's share, fixed at bill creation.
	Owed money.Money

	// Paid is the cumulative amount contributed so far. It only ever
	// increases.
	Paid money.Money
}

// StatusOf derives a payment status from owed vs paid amounts. Status is
// always computed from the amounts on read; it is never stored, so it can
// never drift from them.
func StatusOf(owed, paid money.Money) Status {
	switch {
	case paid.IsZero():
		return StatusPending
	case paid.Amount < owed.Amount:
		return StatusUnderpaid
	case paid.Amount == owed.Amount:
		return StatusPaid
	default:
		return StatusOverpaid
	}
}

// Status derives the participant's current payment status.
func (p Participant) Status() Status {
	return StatusOf(p.Owed, p.Paid)
}

// Settled reports whether the participant has covered their share.
// Overpayment counts as settled.
func (p Participant) Settled() bool {
	return p.Paid.Covers(p.Owed)
}
