package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// LimitDecision is the outcome of evaluating one transfer against a channel cap.
type LimitDecision struct {
	Channel domain.Channel
	// RolledOver is the window after the calendar-day reset, before consumption.
	RolledOver domain.LimitWindow
	// Consumed is the window after the amount has been taken.
	Consumed domain.LimitWindow
	// Reset is true when a new calendar day started a fresh window.
	Reset bool
	// Gated is false for channels that do not check limits; Consumed then
	// equals RolledOver.
	Gated bool
}

// LimitTracker enforces per-channel daily caps against locked accounts.
type LimitTracker struct {
	accountRepo AccountRepository
	policy      domain.LimitPolicy
}

// NewLimitTracker creates a new LimitTracker.
func NewLimitTracker(accountRepo AccountRepository, policy domain.LimitPolicy) *LimitTracker {
	return &LimitTracker{
		accountRepo: accountRepo,
		policy:      policy,
	}
}

// Policy returns the configured caps.
func (t *LimitTracker) Policy() domain.LimitPolicy {
	return t.policy
}

// Evaluate applies the rollover rule to every channel and, for gated ones,
// checks amount against the remaining cap of account. Nothing is persisted.
// On a limit error the decision still carries the rolled over window so the
// caller can keep the reset.
func (t *LimitTracker) Evaluate(account *domain.Account, ch domain.Channel, amount decimal.Decimal, now time.Time) (LimitDecision, error) {
	today := t.policy.Today(now)
	window := account.Limit(ch)

	rolled, reset := window.Rollover(t.policy.Cap(ch), today)
	decision := LimitDecision{
		Channel:    ch,
		RolledOver: rolled,
		Consumed:   rolled,
		Reset:      reset,
	}

	// Ungated channels keep their window current but consume nothing.
	if !t.policy.Gated(ch) {
		return decision, nil
	}
	decision.Gated = true

	consumed, _, err := window.CheckAndConsume(ch, t.policy.Cap(ch), amount, today)
	if err != nil {
		return decision, err
	}
	decision.Consumed = consumed

	return decision, nil
}

// Persist writes window for the decision's channel inside tx.
func (t *LimitTracker) Persist(ctx context.Context, tx Transaction, account *domain.Account, ch domain.Channel, window domain.LimitWindow, now time.Time) error {
	if err := t.accountRepo.UpdateLimit(ctx, tx, account.ID, ch, window, now); err != nil {
		return err
	}
	account.SetLimit(ch, window)
	return nil
}

// FullWindows returns a fresh window for every channel, used when registering accounts.
func (t *LimitTracker) FullWindows(now time.Time) map[domain.Channel]domain.LimitWindow {
	today := t.policy.Today(now)
	windows := make(map[domain.Channel]domain.LimitWindow, len(domain.Channels))
	for _, ch := range domain.Channels {
		windows[ch] = t.policy.FullWindow(ch, today)
	}
	return windows
}
