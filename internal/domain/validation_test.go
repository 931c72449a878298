package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	valid := decimal.RequireFromString("100.25")
	if err := ValidateAmount(valid); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("10.001")); !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}

	tooLarge := decimal.RequireFromString(MaxTransferAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(tooLarge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	// Every amount failure is an invalid transfer.
	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidTransfer) {
		t.Fatalf("expected ErrInvalidTransfer, got %v", err)
	}
}

func TestValidateCardNumber(t *testing.T) {
	t.Parallel()

	if err := ValidateCardNumber("6037991234567890"); err != nil {
		t.Fatalf("expected valid card, got %v", err)
	}

	for _, card := range []string{"", "603799123456789", "60379912345678901", "6037-9912-3456-78", "603799123456789a"} {
		if err := ValidateCardNumber(card); !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("card %q: expected ErrInvalidReference, got %v", card, err)
		}
	}
}

func TestValidateIBAN(t *testing.T) {
	t.Parallel()

	if err := ValidateIBAN("IR062960000000100324200001"); err != nil {
		t.Fatalf("expected valid IBAN, got %v", err)
	}

	for _, iban := range []string{"", "IR06", "ir062960000000100324200001", "IR06 2960 0000 0010 0324 2000 01"} {
		if err := ValidateIBAN(iban); !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("iban %q: expected ErrInvalidReference, got %v", iban, err)
		}
	}

	if got := NormalizeIBAN(" ir06 2960 0000 0010 0324 2000 01 "); got != "IR062960000000100324200001" {
		t.Fatalf("unexpected normalized IBAN %q", got)
	}
}

func TestValidateHistoryLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultHistorySize},
		{-1, DefaultHistorySize},
		{10, 10},
		{MaxHistorySize + 1, MaxHistorySize},
	}

	for _, tt := range tests {
		if got := ValidateHistoryLimit(tt.input); got != tt.expected {
			t.Fatalf("ValidateHistoryLimit(%d) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
