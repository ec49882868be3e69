package allocator

import (
	"errors"
	"testing"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
)

func usd(amount int64) money.Money {
	return money.Money{Amount: amount, Currency: "USD"}
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   money.Money
		n       int
		want    []int64
		wantErr error
	}{
		{
			name:  "even division",
			total: usd(4500),
			n:     3,
			want:  []int64{1500, 1500, 1500},
		},
		{
			name:  "remainder goes to first participants",
			total: usd(100),
			n:     3,
			want:  []int64{34, 33, 33},
		},
		{
			name:  "remainder of two",
			total: usd(101),
			n:     3,
			want:  []int64{34, 34, 33},
		},
		{
			name:  "single participant",
			total: usd(999),
			n:     1,
			want:  []int64{999},
		},
		{
			name:  "more participants than minor units",
			total: usd(2),
			n:     5,
			want:  []int64{1, 1, 0, 0, 0},
		},
		{
			name:    "zero participants",
			total:   usd(100),
			n:       0,
			wantErr: models.ErrNoParticipants,
		},
		{
			name:    "zero total",
			total:   usd(0),
			n:       2,
			wantErr: models.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := EqualSplit(tt.total, tt.n)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EqualSplit error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EqualSplit failed: %v", err)
			}

			var sum int64
			for i, share := range shares {
				if share.Amount != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, share.Amount, tt.want[i])
				}
				if share.Currency != tt.total.Currency {
					t.Errorf("share[%d] currency = %s, want %s", i, share.Currency, tt.total.Currency)
				}
				sum += share.Amount
			}
			if sum != tt.total.Amount {
				t.Errorf("sum(shares) = %d, want exactly %d", sum, tt.total.Amount)
			}
		})
	}
}

func TestEqualSplitAlwaysSumsToTotal(t *testing.T) {
	// Exhaustive small-range check that no minor unit is ever lost.
	for total := int64(1); total <= 500; total++ {
		for n := 1; n <= 7; n++ {
			shares, err := EqualSplit(usd(total), n)
			if err != nil {
				t.Fatalf("EqualSplit(%d, %d) failed: %v", total, n, err)
			}
			var sum int64
			for _, s := range shares {
				sum += s.Amount
			}
			if sum != total {
				t.Fatalf("EqualSplit(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
}

func TestManualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   money.Money
		shares  []money.Money
		wantErr error
	}{
		{
			name:   "exact sum accepted",
			total:  usd(4500),
			shares: []money.Money{usd(2000), usd(1500), usd(1000)},
		},
		{
			name:   "zero share allowed when sum matches",
			total:  usd(100),
			shares: []money.Money{usd(100), usd(0)},
		},
		{
			name:    "sum off by one",
			total:   usd(100),
			shares:  []money.Money{usd(50), usd(49)},
			wantErr: models.ErrShareMismatch,
		},
		{
			name:    "negative share",
			total:   usd(100),
			shares:  []money.Money{usd(150), {Amount: -50, Currency: "USD"}},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "currency mismatch",
			total:   usd(100),
			shares:  []money.Money{usd(50), {Amount: 50, Currency: "EUR"}},
			wantErr: money.ErrCurrencyMismatch,
		},
		{
			name:    "no shares",
			total:   usd(100),
			shares:  nil,
			wantErr: models.ErrNoParticipants,
		},
		{
			name:    "non-positive total",
			total:   usd(0),
			shares:  []money.Money{usd(0)},
			wantErr: models.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ManualSplit(tt.total, tt.shares)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ManualSplit error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ManualSplit failed: %v", err)
			}
			if len(got) != len(tt.shares) {
				t.Fatalf("got %d shares, want %d", len(got), len(tt.shares))
			}
		})
	}
}

func TestManualSplitCopiesInput(t *testing.T) {
	shares := []money.Money{usd(60), usd(40)}
	got, err := ManualSplit(usd(100), shares)
	if err != nil {
		t.Fatalf("ManualSplit failed: %v", err)
	}
	shares[0].Amount = 999
	if got[0].Amount != 60 {
		t.Errorf("returned shares alias caller slice: got[0] = %d", got[0].Amount)
	}
}
