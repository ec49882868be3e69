// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
	"github.com/mmynk/splitpay/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill and its participants in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, organizer, title, currency, total, completed, withdrawn, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Organizer, bill.Title, bill.Currency, bill.Total.Amount,
		boolToInt(bill.Completed), boolToInt(bill.Withdrawn), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Participants {
		p := &bill.Participants[i]
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_participants (bill_id, position, participant_id, name, contact, owed, paid) VALUES (?, ?, ?, ?, ?, ?, ?)",
			bill.ID, i, p.ID, p.Name, p.Contact, p.Owed.Amount, p.Paid.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID with participants in creation order.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var total int64
	var completed, withdrawn int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, organizer, title, currency, total, completed, withdrawn, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Organizer, &bill.Title, &bill.Currency, &total, &completed, &withdrawn, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrBillNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Total = money.Money{Amount: total, Currency: bill.Currency}
	bill.Completed = completed != 0
	bill.Withdrawn = withdrawn != 0

	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, name, contact, owed, paid FROM bill_participants WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		var owed, paid int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Contact, &owed, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Owed = money.Money{Amount: owed, Currency: bill.Currency}
		p.Paid = money.Money{Amount: paid, Currency: bill.Currency}
		bill.Participants = append(bill.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return bill, nil
}

// BillIDsForUser lists bill ids where the user is organizer or participant,
// newest first.
func (s *SQLiteStore) BillIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT b.id, b.created_at
		FROM bills b
		LEFT JOIN bill_participants p ON p.bill_id = b.id
		WHERE b.organizer = ? OR p.participant_id = ?
		ORDER BY b.created_at DESC, b.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var createdAt int64
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill ids: %w", err)
	}

	return ids, nil
}

// AddPayment applies a payment as an increment and stores the recomputed
// completed flag in the same transaction.
func (s *SQLiteStore) AddPayment(ctx context.Context, billID, participantID string, amount int64, completed bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bill_participants SET paid = paid + ? WHERE bill_id = ? AND participant_id = ?",
		amount, billID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update paid amount: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s on bill %s", models.ErrParticipantNotFound, participantID, billID)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE bills SET completed = ? WHERE id = ?",
		boolToInt(completed), billID,
	); err != nil {
		return fmt.Errorf("failed to update completed flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkWithdrawn flips the withdrawn flag exactly once. The WHERE clause on
// withdrawn = 0 is the persistence-level backstop for the at-most-once
// guarantee.
func (s *SQLiteStore) MarkWithdrawn(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET withdrawn = 1 WHERE id = ? AND withdrawn = 0",
		billID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawn: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM bills WHERE id = ?", billID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", models.ErrBillNotFound, billID)
		}
		if err != nil {
			return fmt.Errorf("failed to check bill: %w", err)
		}
		return fmt.Errorf("%w: %s", models.ErrAlreadyWithdrawn, billID)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
