package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankledger/internal/adapter/repository/memory"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/internal/usecase/mocks"
)

func send(t *testing.T, e *engine, from, to *domain.Account, amt string) *usecase.TransferResult {
	t.Helper()
	result, err := e.transfer.Transfer(context.Background(), usecase.TransferInput{
		SenderRef:   from.CardNumber,
		ReceiverRef: to.CardNumber,
		Amount:      amount(amt),
		Channel:     domain.ChannelCardToCard,
	})
	require.NoError(t, err)
	return result
}

func TestLedgerUseCase_HistoryNewestFirst(t *testing.T) {
	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "1000.00")
	b := e.open(t, 2, "1000.00")
	c := e.open(t, 3, "1000.00")

	first := send(t, e, a, b, "1.00")
	e.clock.Advance(time.Minute)
	second := send(t, e, c, a, "2.00")
	e.clock.Advance(time.Minute)
	send(t, e, b, c, "3.00") // does not involve a
	e.clock.Advance(time.Minute)
	third := send(t, e, b, a, "4.00")

	page, err := e.reads.History(context.Background(), usecase.HistoryInput{AccountID: a.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)
	assert.Empty(t, page.NextCursor)

	assert.Equal(t, third.TrackingCode, page.Transactions[0].TrackingCode)
	assert.Equal(t, second.TrackingCode, page.Transactions[1].TrackingCode)
	assert.Equal(t, first.TrackingCode, page.Transactions[2].TrackingCode)
}

func TestLedgerUseCase_HistoryPaging(t *testing.T) {
	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "1000.00")
	b := e.open(t, 2, "1000.00")

	// Pairs share a timestamp so the id tie-break is exercised.
	const total = 7
	for i := 0; i < total; i++ {
		if i%2 == 0 {
			e.clock.Advance(time.Second)
		}
		send(t, e, a, b, "1.00")
	}

	var (
		seen   = map[string]bool{}
		all    []*domain.Transaction
		cursor string
		pages  int
	)
	for {
		page, err := e.reads.History(context.Background(), usecase.HistoryInput{AccountID: a.ID, Limit: 3, Cursor: cursor})
		require.NoError(t, err)
		pages++

		for _, tx := range page.Transactions {
			assert.False(t, seen[tx.ID], "transaction %s returned twice", tx.ID)
			seen[tx.ID] = true
			all = append(all, tx)
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		require.Less(t, pages, 10)
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, all, total)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Before(all[i]), "history out of order at %d", i)
	}
}

func TestLedgerUseCase_HistoryErrors(t *testing.T) {
	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "10.00")

	_, err := e.reads.History(context.Background(), usecase.HistoryInput{AccountID: "nope"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = e.reads.History(context.Background(), usecase.HistoryInput{AccountID: a.ID, Cursor: "%%%"})
	assert.ErrorIs(t, err, domain.ErrInvalidCursor)

	_, err = e.reads.History(context.Background(), usecase.HistoryInput{AccountID: a.ID, RequesterUserID: "user-9"})
	assert.ErrorIs(t, err, domain.ErrNotAccountOwner)

	page, err := e.reads.History(context.Background(), usecase.HistoryInput{AccountID: a.ID, RequesterUserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, page.Transactions)
}

func TestLedgerUseCase_LookupUsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "10.00")
	b := e.open(t, 2, "0")
	result := send(t, e, a, b, "5.00")

	cache := mocks.NewMockCache(ctrl)
	reads := usecase.NewLedgerUseCase(e.accounts, e.ledger, memory.NewLedgerRepository(e.store), cache)
	key := "txn:" + result.TrackingCode

	var stored []byte
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), key).Return(nil, nil),
		cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), usecase.LookupCacheTTL).
			DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
				stored = value
				return nil
			}),
	)

	got, err := reads.Lookup(context.Background(), result.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, result.Transaction.ID, got.ID)
	assert.True(t, got.Amount.Equal(amount("5.00")))

	var decoded domain.Transaction
	require.NoError(t, json.Unmarshal(stored, &decoded))
	assert.Equal(t, result.TrackingCode, decoded.TrackingCode)

	// Second read is served from the cache only.
	cache.EXPECT().Get(gomock.Any(), key).Return(stored, nil)
	got, err = reads.Lookup(context.Background(), result.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, result.Transaction.ID, got.ID)
	assert.Equal(t, a.ID, got.SenderAccountID)
}

func TestLedgerUseCase_LookupCacheFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "10.00")
	b := e.open(t, 2, "0")
	result := send(t, e, a, b, "5.00")

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down")).AnyTimes()

	reads := usecase.NewLedgerUseCase(e.accounts, e.ledger, memory.NewLedgerRepository(e.store), cache)

	got, err := reads.Lookup(context.Background(), result.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, result.Transaction.ID, got.ID)

	_, err = reads.Lookup(context.Background(), "MISSING001")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = reads.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
