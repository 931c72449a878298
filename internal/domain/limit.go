package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LimitWindow is the remaining daily cap of one channel and the calendar day it applies to.
type LimitWindow struct {
	Remaining   decimal.Decimal
	WindowStart time.Time
}

// LimitExceededError is returned when an amount exceeds the remaining cap.
type LimitExceededError struct {
	Channel   Channel
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily %s limit exceeded: remaining %s", e.Channel, e.Remaining.StringFixed(2))
}

// Is makes errors.Is(err, ErrLimitExceeded) match.
func (e *LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// LimitPolicy holds the configured daily caps.
type LimitPolicy struct {
	Caps              map[Channel]decimal.Decimal
	EnforceCardToCard bool
	Location          *time.Location
}

// Cap returns the daily cap of a channel.
func (p LimitPolicy) Cap(ch Channel) decimal.Decimal {
	return p.Caps[ch]
}

// Gated reports whether transfers on ch must pass the limit check.
// Card-to-card is ungated unless explicitly enabled.
func (p LimitPolicy) Gated(ch Channel) bool {
	if ch == ChannelCardToCard {
		return p.EnforceCardToCard
	}
	return ch.IsInterbank()
}

// Today returns the calendar day of now in the policy time zone.
func (p LimitPolicy) Today(now time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return CalendarDay(now.In(loc))
}

// FullWindow returns a window with the whole cap available on day.
func (p LimitPolicy) FullWindow(ch Channel, day time.Time) LimitWindow {
	return LimitWindow{Remaining: p.Cap(ch), WindowStart: CalendarDay(day)}
}

// CalendarDay drops the clock part of t, keeping its year, month and day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Rollover resets the window to the full cap when today is a strictly later
// calendar day than the window start. It reports whether a reset happened.
func (w LimitWindow) Rollover(cap decimal.Decimal, today time.Time) (LimitWindow, bool) {
	today = CalendarDay(today)
	if today.After(CalendarDay(w.WindowStart)) {
		return LimitWindow{Remaining: cap, WindowStart: today}, true
	}
	return w, false
}

// CheckAndConsume applies the rollover rule and then consumes amount from the
// window. The returned window always carries the rollover, even on error.
func (w LimitWindow) CheckAndConsume(ch Channel, cap, amount decimal.Decimal, today time.Time) (LimitWindow, bool, error) {
	next, rolled := w.Rollover(cap, today)

	if amount.GreaterThan(next.Remaining) {
		return next, rolled, &LimitExceededError{Channel: ch, Remaining: next.Remaining}
	}

	next.Remaining = next.Remaining.Sub(amount)
	return next, rolled, nil
}
