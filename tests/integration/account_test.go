package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/clock"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/tests/testutil"
)

func TestAccount_RegisterAndList(t *testing.T) {
	ctx := context.Background()
	_, s := setup(t, testutil.DefaultPolicy())

	acc, err := s.Account.RegisterAccount(ctx, usecase.RegisterAccountInput{
		UserID:         "user-7",
		CardNumber:     testutil.CardNumber(7001),
		IBAN:           testutil.IBAN(7001),
		OpeningBalance: decimal.RequireFromString("12.34"),
	})
	require.NoError(t, err)

	got, err := s.Account.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.CardNumber, got.CardNumber)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.34")))
	assert.True(t, got.OpeningBalance.Equal(got.Balance))
	for _, ch := range domain.Channels {
		assert.True(t, got.Limit(ch).Remaining.Equal(decimal.NewFromInt(100_000_000)), ch)
	}

	byIBAN, err := s.Accounts.GetByIBAN(ctx, testutil.IBAN(7001))
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byIBAN.ID)

	_, err = s.Account.RegisterAccount(ctx, usecase.RegisterAccountInput{
		UserID:     "user-8",
		CardNumber: testutil.CardNumber(7001),
		IBAN:       testutil.IBAN(7002),
	})
	assert.ErrorIs(t, err, domain.ErrAccountExists)

	mine, err := s.Account.ListForUser(ctx, "user-7")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = s.Account.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccount_HistoryPaging(t *testing.T) {
	ctx := context.Background()
	db, s := setup(t, testutil.DefaultPolicy())

	a := db.CreateTestAccount(ctx, "user-1", decimal.RequireFromString("100.00"), testutil.DefaultPolicy())
	b := db.CreateTestAccount(ctx, "user-2", decimal.RequireFromString("100.00"), testutil.DefaultPolicy())

	const total = 7
	for i := 0; i < total; i++ {
		from, to := a, b
		if i%3 == 0 {
			from, to = b, a
		}
		_, err := s.Transfer.Transfer(ctx, usecase.TransferInput{
			SenderRef: from.CardNumber, ReceiverRef: to.CardNumber,
			Amount: decimal.RequireFromString("1.00"), Channel: domain.ChannelCardToCard,
		})
		require.NoError(t, err)
	}

	var (
		all    []*domain.Transaction
		seen   = map[string]bool{}
		cursor string
	)
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10)
		page, err := s.Ledger.History(ctx, usecase.HistoryInput{AccountID: a.ID, Limit: 3, Cursor: cursor, RequesterUserID: "user-1"})
		require.NoError(t, err)
		for _, tx := range page.Transactions {
			assert.False(t, seen[tx.ID], "duplicate %s", tx.ID)
			seen[tx.ID] = true
			all = append(all, tx)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, all, total)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Before(all[i]), "out of order at %d", i)
	}

	_, err := s.Ledger.History(ctx, usecase.HistoryInput{AccountID: a.ID, RequesterUserID: "user-2"})
	assert.ErrorIs(t, err, domain.ErrNotAccountOwner)
}

func TestAccount_LimitWindowResetsNextDay(t *testing.T) {
	ctx := context.Background()

	policy := testutil.DefaultPolicy()
	policy.Caps[domain.ChannelInterbankSameDay] = decimal.RequireFromString("10.00")

	db, _ := setup(t, policy)
	clk := clock.NewFixed(time.Now().UTC())
	s := testutil.NewStack(db, policy, clk)

	sender := db.CreateTestAccount(ctx, "user-1", decimal.RequireFromString("100.00"), policy)
	receiver := db.CreateTestAccount(ctx, "user-2", decimal.Zero, policy)

	in := usecase.TransferInput{
		SenderRef: sender.ID, ReceiverRef: receiver.IBAN,
		Amount: decimal.RequireFromString("10.00"), Channel: domain.ChannelInterbankSameDay,
	}
	_, err := s.Transfer.Transfer(ctx, in)
	require.NoError(t, err)

	_, err = s.Transfer.Transfer(ctx, in)
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	clk.Advance(24 * time.Hour)
	_, err = s.Transfer.Transfer(ctx, in)
	require.NoError(t, err)

	got, err := s.Accounts.GetByID(ctx, sender.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, got.Limit(domain.ChannelInterbankSameDay).WindowStart.Equal(policy.Today(clk.Now())))
}

func TestReconciliation_AfterTransfers(t *testing.T) {
	ctx := context.Background()
	db, s := setup(t, testutil.DefaultPolicy())

	a := db.CreateTestAccount(ctx, "user-1", decimal.RequireFromString("100.00"), testutil.DefaultPolicy())
	b := db.CreateTestAccount(ctx, "user-2", decimal.RequireFromString("50.00"), testutil.DefaultPolicy())

	_, err := s.Transfer.Transfer(ctx, usecase.TransferInput{
		SenderRef: a.CardNumber, ReceiverRef: b.CardNumber,
		Amount: decimal.RequireFromString("30.00"), Channel: domain.ChannelCardToCard,
	})
	require.NoError(t, err)

	result, err := s.Reconciliation.ReconcileAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, result.IsReconciled)
	assert.True(t, result.Sent.Equal(decimal.RequireFromString("30.00")))

	report, err := s.Reconciliation.GenerateReconciliationReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalAccounts)
	assert.Empty(t, report.Discrepancies)
	assert.True(t, report.LedgerConsistent)
}
