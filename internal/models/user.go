package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account in the dev identity provider. The ledger
// itself only ever sees the user's ID as a caller principal; registration
// and login live entirely at the boundary.
type User struct {
	// ID is the unique identifier for the user (UUID format). It doubles
	// as the principal used for organizer/participant ids.
	ID string

	// Email is the login identifier (unique).
	Email string

	// DisplayName is shown to other participants.
	DisplayName string

	// WalletAddress is the payout destination handed to the transfer
	// executor. Optional; defaults to the user ID.
	WalletAddress string

	// PasswordHash is the bcrypt hash of the login credential.
	PasswordHash string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Payout returns the destination principal for withdrawals.
func (u *User) Payout() string {
	if u.WalletAddress != "" {
		return u.WalletAddress
	}
	return u.ID
}
