package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLimitWindow_CheckAndConsume(t *testing.T) {
	limitCap := decimal.NewFromInt(1000)
	today := day(2026, 10, 16)

	tests := []struct {
		name          string
		window        LimitWindow
		amount        decimal.Decimal
		wantRemaining decimal.Decimal
		wantRolled    bool
		wantErr       bool
	}{
		{
			name:          "same day consume",
			window:        LimitWindow{Remaining: decimal.NewFromInt(300), WindowStart: today},
			amount:        decimal.NewFromInt(100),
			wantRemaining: decimal.NewFromInt(200),
		},
		{
			name:          "same day exact remaining",
			window:        LimitWindow{Remaining: decimal.NewFromInt(100), WindowStart: today},
			amount:        decimal.NewFromInt(100),
			wantRemaining: decimal.Zero,
		},
		{
			name:          "same day over remaining",
			window:        LimitWindow{Remaining: decimal.NewFromInt(50), WindowStart: today},
			amount:        decimal.NewFromInt(100),
			wantRemaining: decimal.NewFromInt(50),
			wantErr:       true,
		},
		{
			name:          "next day resets then consumes",
			window:        LimitWindow{Remaining: decimal.Zero, WindowStart: day(2026, 10, 15)},
			amount:        decimal.NewFromInt(100),
			wantRemaining: decimal.NewFromInt(900),
			wantRolled:    true,
		},
		{
			name:          "reset applies even when over cap",
			window:        LimitWindow{Remaining: decimal.Zero, WindowStart: day(2026, 10, 1)},
			amount:        decimal.NewFromInt(5000),
			wantRemaining: limitCap,
			wantRolled:    true,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, rolled, err := tt.window.CheckAndConsume(ChannelInterbankSameDay, limitCap, tt.amount, today)

			assert.Equal(t, tt.wantRolled, rolled)
			assert.True(t, tt.wantRemaining.Equal(next.Remaining), "remaining %s, want %s", next.Remaining, tt.wantRemaining)

			if tt.wantErr {
				var limitErr *LimitExceededError
				require.ErrorAs(t, err, &limitErr)
				assert.True(t, errors.Is(err, ErrLimitExceeded))
				assert.True(t, limitErr.Remaining.Equal(next.Remaining))
				return
			}
			require.NoError(t, err)
			assert.True(t, next.WindowStart.Equal(today))
		})
	}
}

func TestLimitWindow_RolloverUsesCalendarDays(t *testing.T) {
	limitCap := decimal.NewFromInt(10)
	lateEvening := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	w := LimitWindow{Remaining: decimal.Zero, WindowStart: CalendarDay(lateEvening)}

	// One minute later is a new calendar day even though a full day has not elapsed.
	next, rolled := w.Rollover(limitCap, time.Date(2026, 10, 16, 0, 0, 30, 0, time.UTC))
	require.True(t, rolled)
	assert.True(t, next.Remaining.Equal(limitCap))

	// Twenty hours later on the same day never resets.
	w = LimitWindow{Remaining: decimal.Zero, WindowStart: day(2026, 10, 16)}
	_, rolled = w.Rollover(limitCap, time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC))
	assert.False(t, rolled)

	// A window start in the future (clock skew) is never moved backwards.
	w = LimitWindow{Remaining: decimal.NewFromInt(3), WindowStart: day(2026, 10, 17)}
	next, rolled = w.Rollover(limitCap, day(2026, 10, 16))
	assert.False(t, rolled)
	assert.True(t, next.WindowStart.Equal(day(2026, 10, 17)))
}

func TestLimitWindow_ResetIdempotentWithinDay(t *testing.T) {
	limitCap := decimal.NewFromInt(100)
	today := day(2026, 10, 16)
	w := LimitWindow{Remaining: decimal.Zero, WindowStart: day(2026, 10, 10)}

	consumed := decimal.Zero
	for i := 0; i < 50; i++ {
		next, _, err := w.CheckAndConsume(ChannelInterbankBatch, limitCap, decimal.NewFromInt(7), today)
		w = next
		if err == nil {
			consumed = consumed.Add(decimal.NewFromInt(7))
		}
	}

	assert.True(t, consumed.LessThanOrEqual(limitCap), "consumed %s over a single cap", consumed)
	assert.True(t, consumed.Equal(decimal.NewFromInt(98)))
}

func TestLimitPolicy_Gated(t *testing.T) {
	p := LimitPolicy{}
	assert.False(t, p.Gated(ChannelCardToCard))
	assert.True(t, p.Gated(ChannelInterbankSameDay))
	assert.True(t, p.Gated(ChannelInterbankBatch))

	p.EnforceCardToCard = true
	assert.True(t, p.Gated(ChannelCardToCard))
}

func TestLimitPolicy_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3:30", 3*3600+1800)
	p := LimitPolicy{Location: loc}

	now := time.Date(2026, 10, 15, 21, 0, 0, 0, time.UTC)
	assert.True(t, p.Today(now).Equal(day(2026, 10, 16)))
	assert.True(t, LimitPolicy{}.Today(now).Equal(day(2026, 10, 15)))
}
