package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer bank account with its per-channel limit windows.
type Account struct {
	ID             string
	UserID         string
	CardNumber     string
	IBAN           string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	Limits         map[Channel]LimitWindow
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after adding delta, or ErrInsufficientFunds
// when the result would be negative.
func (a *Account) ApplyDelta(delta decimal.Decimal) (decimal.Decimal, error) {
	newBalance := a.Balance.Add(delta)
	if newBalance.IsNegative() {
		return a.Balance, ErrInsufficientFunds
	}
	return newBalance, nil
}

// Limit returns the stored window for a channel.
func (a *Account) Limit(ch Channel) LimitWindow {
	if a.Limits == nil {
		return LimitWindow{}
	}
	return a.Limits[ch]
}

// SetLimit stores the window for a channel.
func (a *Account) SetLimit(ch Channel, w LimitWindow) {
	if a.Limits == nil {
		a.Limits = make(map[Channel]LimitWindow, len(Channels))
	}
	a.Limits[ch] = w
}

// Clone returns a deep copy safe to hand out of a store.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Limits = make(map[Channel]LimitWindow, len(a.Limits))
	for ch, w := range a.Limits {
		cp.Limits[ch] = w
	}
	return &cp
}
