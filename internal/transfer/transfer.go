// Package transfer defines the capability the ledger uses to move value
// between accounts. The ledger only ever records state after an executor
// reports success; a failed attempt must leave no trace in the ledger.
package transfer

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitpay/internal/money"
)

// Executor attempts to move an amount between two principals. A nil error
// means the transfer settled; any error means no value moved.
type Executor interface {
	Attempt(ctx context.Context, from, to string, amount money.Money) error
}

// Noop is an executor that settles every transfer immediately. Used in dev
// mode and tests when no wallet service is configured.
type Noop struct{}

// Attempt logs the transfer and reports success.
func (Noop) Attempt(ctx context.Context, from, to string, amount money.Money) error {
	slog.Info("Transfer settled (noop executor)",
		"from", from,
		"to", to,
		"amount", amount.String(),
	)
	return nil
}
