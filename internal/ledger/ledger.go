// Package ledger owns all bill and participant state. It is the single
// writer for every bill: mutating operations on one bill are serialized by
// a per-bill lock, while operations on different bills run in parallel.
// Transfer-executor calls always happen outside the lock, and ledger state
// is only committed after the executor reports success.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitpay/internal/allocator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/internal/transfer"
)

// Ledger is the bill settlement registry.
type Ledger struct {
	store storage.Store
	exec  transfer.Executor

	// mu guards both maps; the per-bill locks themselves are held across
	// whole read-validate-write sequences, mu only for map access.
	mu          sync.Mutex
	locks       map[string]*sync.Mutex
	withdrawing map[string]struct{}
}

// New creates a ledger backed by the given store and transfer executor.
func New(store storage.Store, exec transfer.Executor) *Ledger {
	return &Ledger{
		store:       store,
		exec:        exec,
		locks:       make(map[string]*sync.Mutex),
		withdrawing: make(map[string]struct{}),
	}
}

// lockFor returns the mutex guarding one bill's read-validate-write
// sequences. Locks are never removed; bills are never deleted, and an entry
// is two words.
func (l *Ledger) lockFor(billID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[billID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[billID] = lock
	}
	return lock
}

// reserveWithdrawal claims the one in-flight withdrawal slot for a bill.
// Returns false if a payout is already in flight.
func (l *Ledger) reserveWithdrawal(billID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, inFlight := l.withdrawing[billID]; inFlight {
		return false
	}
	l.withdrawing[billID] = struct{}{}
	return true
}

// releaseWithdrawal clears the reservation after the payout settled or
// failed.
func (l *Ledger) releaseWithdrawal(billID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.withdrawing, billID)
}

// withdrawalInFlight reports whether a payout is currently in flight for the
// bill.
func (l *Ledger) withdrawalInFlight(billID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, inFlight := l.withdrawing[billID]
	return inFlight
}

// escrowAccount names the per-bill holding account payments settle into and
// withdrawals pay out of.
func escrowAccount(billID string) string {
	return "splitpay:escrow:" + billID
}

// ParticipantInput describes one participant at bill creation. Share is
// required for the manual split policy and ignored for equal split.
type ParticipantInput struct {
	ID      string
	Name    string
	Contact string
	Share   *money.Money
}

// CreateBill allocates shares, assigns a fresh id and persists the bill.
// The participant set is fixed for the life of the bill.
func (l *Ledger) CreateBill(ctx context.Context, organizer, title string, total money.Money, inputs []ParticipantInput, policy allocator.Policy) (string, error) {
	if !policy.Valid() {
		return "", fmt.Errorf("%w: unknown split policy %q", models.ErrInvalidAmount, policy)
	}

	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID == "" {
			return "", fmt.Errorf("%w: empty participant id", models.ErrInvalidAmount)
		}
		if _, dup := seen[in.ID]; dup {
			return "", fmt.Errorf("%w: %s", models.ErrDuplicateParticipant, in.ID)
		}
		seen[in.ID] = struct{}{}
	}

	shares, err := l.allocate(total, inputs, policy)
	if err != nil {
		return "", err
	}

	bill := &models.Bill{
		ID:        uuid.New().String(),
		Organizer: organizer,
		Title:     title,
		Currency:  total.Currency,
		Total:     total,
		CreatedAt: time.Now().UnixNano(),
	}
	bill.Participants = make([]models.Participant, len(inputs))
	for i, in := range inputs {
		bill.Participants[i] = models.Participant{
			ID:      in.ID,
			Name:    in.Name,
			Contact: in.Contact,
			Owed:    shares[i],
			Paid:    money.Zero(total.Currency),
		}
	}
	// Degenerate case: every share already covered (zero owed) means the
	// bill is born completed.
	bill.Completed = bill.AllSettled()

	if err := l.store.CreateBill(ctx, bill); err != nil {
		return "", fmt.Errorf("failed to persist bill: %w", err)
	}

	billsCreated.Inc()
	slog.Info("Bill created",
		"bill_id", bill.ID,
		"organizer", organizer,
		"total", total.String(),
		"participants", len(inputs),
		"policy", string(policy),
	)
	return bill.ID, nil
}

func (l *Ledger) allocate(total money.Money, inputs []ParticipantInput, policy allocator.Policy) ([]money.Money, error) {
	if policy == allocator.PolicyEqual {
		return allocator.EqualSplit(total, len(inputs))
	}
	shares := make([]money.Money, len(inputs))
	for i, in := range inputs {
		if in.Share == nil {
			return nil, fmt.Errorf("%w: participant %s has no share under manual split", models.ErrInvalidAmount, in.ID)
		}
		shares[i] = *in.Share
	}
	return allocator.ManualSplit(total, shares)
}

// RecordPayment settles a payment from payer into the bill's escrow and
// credits it against one participant's share. The transfer runs before the
// lock is taken; the paid amount is applied as an increment under the lock,
// so racing payments never lose updates. Overpayment is accepted and
// classified, never rejected.
func (l *Ledger) RecordPayment(ctx context.Context, billID, participantID, payer string, amount money.Money) (models.Status, bool, error) {
	if !amount.IsPositive() {
		return "", false, fmt.Errorf("%w: payment must be positive, got %d", models.ErrInvalidAmount, amount.Amount)
	}

	// Preflight outside the lock: reject doomed commands before moving
	// any value into escrow.
	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return "", false, err
	}
	if err := l.validatePayment(bill, participantID, amount); err != nil {
		return "", false, err
	}

	if err := l.exec.Attempt(ctx, payer, escrowAccount(billID), amount); err != nil {
		return "", false, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	lock := l.lockFor(billID)
	lock.Lock()
	defer lock.Unlock()

	// Re-validate under the lock; state may have moved while the transfer
	// settled.
	bill, err = l.store.GetBill(ctx, billID)
	if err != nil {
		return "", false, err
	}
	if err := l.validatePayment(bill, participantID, amount); err != nil {
		slog.Error("Payment settled into escrow but cannot be recorded",
			"bill_id", billID,
			"participant_id", participantID,
			"amount", amount.String(),
			"error", err,
		)
		return "", false, err
	}

	p := bill.Participant(participantID)
	p.Paid.Amount += amount.Amount
	completed := bill.AllSettled()

	if err := l.store.AddPayment(ctx, billID, participantID, amount.Amount, completed); err != nil {
		return "", false, fmt.Errorf("failed to record payment: %w", err)
	}

	status := p.Status()
	paymentsRecorded.Inc()
	slog.Info("Payment recorded",
		"bill_id", billID,
		"participant_id", participantID,
		"amount", amount.String(),
		"status", string(status),
		"completed", completed,
	)
	return status, completed, nil
}

// validatePayment rejects payments against withdrawn bills. A bill whose
// payout is in flight counts as withdrawn here: the payout pays out the
// collected snapshot taken at reservation time, so a payment recorded during
// the window would be stranded in escrow.
func (l *Ledger) validatePayment(bill *models.Bill, participantID string, amount money.Money) error {
	if bill.Withdrawn || l.withdrawalInFlight(bill.ID) {
		return fmt.Errorf("%w: %s", models.ErrBillWithdrawn, bill.ID)
	}
	if amount.Currency != bill.Currency {
		return fmt.Errorf("%w: payment is %s, bill is %s", models.ErrInvalidAmount, amount.Currency, bill.Currency)
	}
	if bill.Participant(participantID) == nil {
		return fmt.Errorf("%w: %s on bill %s", models.ErrParticipantNotFound, participantID, bill.ID)
	}
	return nil
}

// Withdraw pays the collected funds out to the organizer, at most once per
// bill. The withdrawal is reserved under the bill lock before the payout
// transfer runs, so a racing duplicate request observes ErrAlreadyWithdrawn
// rather than triggering a second payout. The withdrawn flag itself is only
// persisted after the payout settles; if the transfer fails, the
// reservation is released and the organizer may retry.
func (l *Ledger) Withdraw(ctx context.Context, billID, requester, destination string) (money.Money, error) {
	if destination == "" {
		destination = requester
	}

	lock := l.lockFor(billID)
	lock.Lock()

	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		lock.Unlock()
		return money.Money{}, err
	}
	if bill.Organizer != requester {
		lock.Unlock()
		return money.Money{}, fmt.Errorf("%w: %s is not the organizer of %s", models.ErrNotOrganizer, requester, billID)
	}
	if bill.Withdrawn {
		lock.Unlock()
		return money.Money{}, fmt.Errorf("%w: %s", models.ErrAlreadyWithdrawn, billID)
	}
	if !bill.Completed {
		lock.Unlock()
		return money.Money{}, fmt.Errorf("%w: %s", models.ErrBillNotComplete, billID)
	}
	if !l.reserveWithdrawal(billID) {
		lock.Unlock()
		return money.Money{}, fmt.Errorf("%w: %s", models.ErrAlreadyWithdrawn, billID)
	}

	collected := bill.TotalCollected()
	lock.Unlock()

	// Payout runs outside the lock; the reservation above keeps the
	// at-most-once guarantee while slow I/O is in flight.
	execErr := l.exec.Attempt(ctx, escrowAccount(billID), destination, collected)

	lock.Lock()
	defer lock.Unlock()
	l.releaseWithdrawal(billID)

	if execErr != nil {
		slog.Warn("Withdrawal payout failed, reservation released",
			"bill_id", billID,
			"organizer", requester,
			"error", execErr,
		)
		return money.Money{}, fmt.Errorf("%w: %v", models.ErrTransferFailed, execErr)
	}

	if err := l.store.MarkWithdrawn(ctx, billID); err != nil {
		return money.Money{}, fmt.Errorf("failed to mark bill withdrawn: %w", err)
	}

	withdrawals.Inc()
	slog.Info("Bill withdrawn",
		"bill_id", billID,
		"organizer", requester,
		"collected", collected.String(),
	)
	return collected, nil
}
