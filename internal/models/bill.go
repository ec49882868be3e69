package models

import "github.com/mmynk/splitpay/internal/money"

// Bill is a single split-expense record. It is created atomically with its
// full participant set and mutated only by recording payments and by the
// one-time withdrawal.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Organizer is the principal who created the bill and the only one
	// allowed to withdraw.
	Organizer string

	// Title is the human-readable name for the bill.
	Title string

	// Currency tags the total and every participant amount. A bill never
	// mixes currencies.
	Currency string

	// Total is the bill amount, fixed at creation. It always equals the
	// sum of participant shares.
	Total money.Money

	// Participants in creation order. Non-empty; ids unique within the
	// bill.
	Participants []Participant

	// Completed is true once every participant has paid at least their
	// share. It is recomputed inside the same exclusive scope as the
	// payment that could change it.
	Completed bool

	// Withdrawn is set at most once, after a successful payout to the
	// organizer. A withdrawn bill is terminal.
	Withdrawn bool

	// CreatedAt is the creation time in Unix nanoseconds. Nanosecond
	// precision keeps newest-first listings stable for bills created
	// within the same second.
	CreatedAt int64
}

// Participant returns the participant with the given id, or nil.
func (b *Bill) Participant(id string) *Participant {
	for i := range b.Participants {
		if b.Participants[i].ID == id {
			return &b.Participants[i]
		}
	}
	return nil
}

// AllSettled reports whether every participant has covered their share.
func (b *Bill) AllSettled() bool {
	for i := range b.Participants {
		if !b.Participants[i].Settled() {
			return false
		}
	}
	return true
}

// TotalCollected sums the paid amounts across participants. It may exceed
// Total when someone overpaid.
func (b *Bill) TotalCollected() money.Money {
	collected := money.Zero(b.Currency)
	for i := range b.Participants {
		collected.Amount += b.Participants[i].Paid.Amount
	}
	return collected
}

// Clone returns a deep copy, so readers never hold references into live
// ledger state.
func (b *Bill) Clone() *Bill {
	cp := *b
	cp.Participants = make([]Participant, len(b.Participants))
	copy(cp.Participants, b.Participants)
	return &cp
}
