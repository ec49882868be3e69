package ledger

import (
	"context"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
)

// BillDetail is the read-model shape consumers depend on for a single bill.
type BillDetail struct {
	ID               string      `json:"id"`
	Organizer        string      `json:"organizer"`
	Title            string      `json:"title"`
	Total            money.Money `json:"total"`
	TotalCollected   money.Money `json:"total_collected"`
	Currency         string      `json:"currency"`
	ParticipantCount int         `json:"participant_count"`
	Completed        bool        `json:"completed"`
	Withdrawn        bool        `json:"withdrawn"`
	CreatedAt        int64       `json:"created_at"`
}

// BillStatus is the index-aligned parallel-array projection of a bill's
// participants. External consumers zip these by position, so every slice is
// in the bill's participant order and always the same length.
type BillStatus struct {
	ParticipantIDs []string        `json:"participant_ids"`
	Owed           []money.Money   `json:"owed_amounts"`
	Paid           []money.Money   `json:"paid_amounts"`
	Statuses       []models.Status `json:"statuses"`
	Names          []string        `json:"names"`
	Contacts       []string        `json:"contacts"`
}

// GetBill returns a snapshot of a bill's summary fields.
func (l *Ledger) GetBill(ctx context.Context, billID string) (BillDetail, error) {
	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return BillDetail{}, err
	}
	return BillDetail{
		ID:               bill.ID,
		Organizer:        bill.Organizer,
		Title:            bill.Title,
		Total:            bill.Total,
		TotalCollected:   bill.TotalCollected(),
		Currency:         bill.Currency,
		ParticipantCount: len(bill.Participants),
		Completed:        bill.Completed,
		Withdrawn:        bill.Withdrawn,
		CreatedAt:        bill.CreatedAt,
	}, nil
}

// BillStatus returns the per-participant progress arrays for a bill.
// Statuses are derived from the owed/paid snapshot, never read from storage.
func (l *Ledger) BillStatus(ctx context.Context, billID string) (BillStatus, error) {
	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return BillStatus{}, err
	}

	n := len(bill.Participants)
	status := BillStatus{
		ParticipantIDs: make([]string, n),
		Owed:           make([]money.Money, n),
		Paid:           make([]money.Money, n),
		Statuses:       make([]models.Status, n),
		Names:          make([]string, n),
		Contacts:       make([]string, n),
	}
	for i := range bill.Participants {
		p := &bill.Participants[i]
		status.ParticipantIDs[i] = p.ID
		status.Owed[i] = p.Owed
		status.Paid[i] = p.Paid
		status.Statuses[i] = p.Status()
		status.Names[i] = p.Name
		status.Contacts[i] = p.Contact
	}
	return status, nil
}

// BillsForUser lists ids of bills where the user is organizer or
// participant, most recently created first.
func (l *Ledger) BillsForUser(ctx context.Context, userID string) ([]string, error) {
	return l.store.BillIDsForUser(ctx, userID)
}
