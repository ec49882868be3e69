// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitpay/internal/models"
)

// Store defines the interface for ledger persistence. The ledger layers
// per-bill exclusivity on top of it; implementations only need to make each
// individual call atomic.
type Store interface {
	// CreateBill persists a new bill together with its full participant
	// set.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its participants in creation order.
	// Returns models.ErrBillNotFound if it does not exist. The returned
	// bill is a snapshot owned by the caller.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// BillIDsForUser lists ids of bills where the user is organizer or
	// participant, newest first.
	BillIDsForUser(ctx context.Context, userID string) ([]string, error)

	// AddPayment increments a participant's paid amount and stores the
	// bill's recomputed completed flag in one atomic step. The increment
	// form (paid = paid + amount) is what keeps concurrent payments from
	// losing updates. Returns models.ErrParticipantNotFound if the
	// participant is not on the bill.
	AddPayment(ctx context.Context, billID, participantID string, amount int64, completed bool) error

	// MarkWithdrawn flips the withdrawn flag, refusing to flip it twice.
	// Returns models.ErrAlreadyWithdrawn if it was already set and
	// models.ErrBillNotFound if the bill does not exist.
	MarkWithdrawn(ctx context.Context, billID string) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, or (nil, nil) if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id, or (nil, nil) if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
