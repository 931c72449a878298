package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
)

var accountColumns = []string{
	"id", "user_id", "card_number", "iban", "balance", "opening_balance",
	"card_to_card_remaining", "card_to_card_window_start",
	"same_day_remaining", "same_day_window_start",
	"batch_remaining", "batch_window_start",
	"version", "created_at", "updated_at",
}

var transactionColumns = []string{
	"id", "tracking_code", "sender_account_id", "receiver_account_id", "amount", "channel", "created_at",
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBegin()
	tx, err := NewTxManager(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}

func TestAccountRepository_GetByIDsForUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)
	tx := beginTx(t, pool)

	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	pool.ExpectQuery("FROM accounts WHERE id = ANY").
		WithArgs([]string{"a", "b"}).
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("a", "u1", "6037990000000001", "IR000000000000000000000001", "100.50", "100.50",
				"0", day, "50.00", day, "100000000", day.AddDate(0, 0, -1), int64(3), now, now).
			AddRow("b", "u2", "6037990000000002", "IR000000000000000000000002", "0", "0",
				"0", day, "0", day, "0", day, int64(0), now, now))

	accounts, err := repo.GetByIDsForUpdate(context.Background(), tx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	a := accounts[0]
	assert.True(t, a.Balance.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, int64(3), a.Version)
	assert.True(t, a.Limit(domain.ChannelInterbankSameDay).Remaining.Equal(decimal.NewFromInt(50)))
	assert.True(t, a.Limit(domain.ChannelInterbankBatch).WindowStart.Equal(day.AddDate(0, 0, -1)))

	assertExpectations(t, pool)
}

func TestAccountRepository_GetByCardNumberNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)

	pool.ExpectQuery("FROM accounts WHERE card_number").
		WithArgs("6037990000000009").
		WillReturnRows(pgxmock.NewRows(accountColumns))

	_, err := repo.GetByCardNumber(context.Background(), "6037990000000009")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	assertExpectations(t, pool)
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)

	pool.ExpectExec("INSERT INTO accounts").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := repo.Create(context.Background(), &domain.Account{ID: "a", CardNumber: "6037990000000001", IBAN: "IR1"})
	assert.ErrorIs(t, err, domain.ErrAccountExists)

	assertExpectations(t, pool)
}

func TestAccountRepository_ApplyDelta(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectQuery("UPDATE accounts").
		WithArgs("a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("60.00"))
	pool.ExpectQuery("UPDATE accounts").
		WithArgs("a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation})

	balance, err := repo.ApplyDelta(context.Background(), tx, "a", decimal.NewFromInt(-40), time.Now())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(60)))

	_, err = repo.ApplyDelta(context.Background(), tx, "a", decimal.NewFromInt(-61), time.Now())
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assertExpectations(t, pool)
}

func TestAccountRepository_UpdateLimitPicksChannelColumns(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec("SET same_day_remaining").
		WithArgs("a", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("SET card_to_card_remaining").
		WithArgs("a", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	w := domain.LimitWindow{Remaining: decimal.NewFromInt(5), WindowStart: time.Now()}
	require.NoError(t, repo.UpdateLimit(context.Background(), tx, "a", domain.ChannelInterbankSameDay, w, time.Now()))
	require.NoError(t, repo.UpdateLimit(context.Background(), tx, "a", domain.ChannelCardToCard, w, time.Now()))
	assert.Error(t, repo.UpdateLimit(context.Background(), tx, "a", domain.Channel("swift"), w, time.Now()))

	assertExpectations(t, pool)
}

func TestTransactionRepository_CreateDuplicateCode(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)
	tx := beginTx(t, pool)

	record := &domain.Transaction{
		ID:                "t1",
		TrackingCode:      "ABCDEFGHJK",
		SenderAccountID:   "a",
		ReceiverAccountID: "b",
		Amount:            decimal.NewFromInt(1),
		Channel:           domain.ChannelCardToCard,
		CreatedAt:         time.Now(),
	}

	pool.ExpectQuery("ON CONFLICT \\(tracking_code\\) DO NOTHING").
		WithArgs("t1", "ABCDEFGHJK", "a", "b", pgxmock.AnyArg(), "card-to-card", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	pool.ExpectQuery("INSERT INTO transactions").
		WithArgs("t1", "ZZZZZZZZZZ", "a", "b", pgxmock.AnyArg(), "card-to-card", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("t1"))

	err := repo.Create(context.Background(), tx, record)
	assert.ErrorIs(t, err, domain.ErrDuplicateTrackingCode)

	record.TrackingCode = "ZZZZZZZZZZ"
	require.NoError(t, repo.Create(context.Background(), tx, record))

	assertExpectations(t, pool)
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)

	t1 := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery("ORDER BY created_at DESC, id DESC").
		WithArgs("a", int32(2)).
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow("t2", "CODE000002", "b", "a", "2.00", "interbank-batch", t1).
			AddRow("t1", "CODE000001", "a", "b", "1.00", "card-to-card", t1))

	records, err := repo.ListByAccount(context.Background(), "a", 2, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ChannelInterbankBatch, records[0].Channel)
	assert.True(t, records[1].Amount.Equal(decimal.NewFromInt(1)))

	pool.ExpectQuery("\\(created_at, id\\) <").
		WithArgs("a", pgxmock.AnyArg(), "t1", int32(2)).
		WillReturnRows(pgxmock.NewRows(transactionColumns))

	records, err = repo.ListByAccount(context.Background(), "a", 2, domain.CursorOf(records[1]))
	require.NoError(t, err)
	assert.Empty(t, records)

	assertExpectations(t, pool)
}

func TestTransactionRepository_GetByTrackingCodeNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)

	pool.ExpectQuery("WHERE tracking_code").
		WithArgs("NOPE000000").
		WillReturnRows(pgxmock.NewRows(transactionColumns))

	_, err := repo.GetByTrackingCode(context.Background(), "NOPE000000")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	assertExpectations(t, pool)
}

func TestLedgerRepository_CheckConsistency(t *testing.T) {
	pool := newMockPool(t)
	repo := NewLedgerRepository(pool)

	pool.ExpectQuery("SUM\\(opening_balance\\)").
		WillReturnRows(pgxmock.NewRows([]string{"total_balance", "total_opening_balance"}).AddRow("1500.00", "1500.00"))

	balance, opening, err := repo.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Equal(opening))
	assert.True(t, balance.Equal(decimal.NewFromInt(1500)))

	assertExpectations(t, pool)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	pool.ExpectQuery("WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "hashed_password", "active", "created_at"}))

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = repo.GetByUsername(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "100000000000", "-40.50", "1234.5"} {
		d := decimal.RequireFromString(s)
		assert.True(t, numericToDecimal(decimalToNumeric(d)).Equal(d), s)
	}
}

var outboxColumns = []string{
	"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
}

func TestOutboxRepository_CreateInTransaction(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxRepository(pool)
	tx := beginTx(t, pool)

	record := &domain.Transaction{
		ID:                "t1",
		TrackingCode:      "ABCDEFGHJK",
		SenderAccountID:   "a",
		ReceiverAccountID: "b",
		Amount:            decimal.RequireFromString("12.50"),
		Channel:           domain.ChannelInterbankBatch,
		CreatedAt:         time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
	event := domain.NewTransferCompletedEvent("e1", record)

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("e1", "t1", event.AggregateType, domain.EventTypeTransferCompleted, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), tx, event))
	assertExpectations(t, pool)
}

func TestOutboxRepository_GetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxRepository(pool)
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM outbox_events").
		WithArgs(int32(maxOutboxBatch)).
		WillReturnRows(pgxmock.NewRows(outboxColumns).
			AddRow("e1", "t1", "transaction", domain.EventTypeTransferCompleted, []byte(`{"tracking_code":"ABCDEFGHJK"}`), created, nil, false))

	events, err := repo.GetUnpublished(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ABCDEFGHJK", events[0].Payload["tracking_code"])
	assert.Nil(t, events[0].PublishedAt)

	pool.ExpectQuery("FROM outbox_events").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows(outboxColumns).
			AddRow("e2", "t2", "transaction", domain.EventTypeTransferCompleted, []byte(`{broken`), created, nil, false))

	_, err = repo.GetUnpublished(context.Background(), 10)
	assert.ErrorContains(t, err, "event e2")

	assertExpectations(t, pool)
}

func TestOutboxRepository_MarkAndPrune(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxRepository(pool)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	pool.ExpectExec("UPDATE outbox_events SET published = TRUE").
		WithArgs("e1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("DELETE FROM outbox_events").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("lock timeout"))

	require.NoError(t, repo.MarkPublished(context.Background(), "e1", now))
	assert.ErrorContains(t, repo.DeletePublished(context.Background(), now.Add(-time.Hour)), "prune published events")

	assertExpectations(t, pool)
}
