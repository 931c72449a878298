package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && err != ErrInsufficientFunds {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{Balance: decimal.RequireFromString("1000.00")}

	newBalance, err := acc.ApplyDelta(decimal.RequireFromString("-400.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !newBalance.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expected balance 600, got %s", newBalance)
	}

	newBalance, err = acc.ApplyDelta(decimal.RequireFromString("-1000.01"))
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !newBalance.Equal(acc.Balance) {
		t.Errorf("expected balance unchanged on failure, got %s", newBalance)
	}
}

func TestAccount_CloneIsDeep(t *testing.T) {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	acc := &Account{ID: "acc-1"}
	acc.SetLimit(ChannelInterbankBatch, LimitWindow{Remaining: decimal.NewFromInt(10), WindowStart: day})

	cp := acc.Clone()
	cp.SetLimit(ChannelInterbankBatch, LimitWindow{Remaining: decimal.Zero, WindowStart: day})

	if !acc.Limit(ChannelInterbankBatch).Remaining.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("clone shares limit map with original")
	}
}
