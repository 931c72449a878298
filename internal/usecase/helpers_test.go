package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/clock"
	"github.com/iho/bankledger/internal/adapter/idgen"
	"github.com/iho/bankledger/internal/adapter/repository/memory"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

var testNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func testPolicy() domain.LimitPolicy {
	return domain.LimitPolicy{
		Caps: map[domain.Channel]decimal.Decimal{
			domain.ChannelCardToCard:       decimal.NewFromInt(10_000_000),
			domain.ChannelInterbankSameDay: decimal.NewFromInt(100_000_000),
			domain.ChannelInterbankBatch:   decimal.NewFromInt(100_000_000),
		},
		Location: time.UTC,
	}
}

// engine wires the transfer engine to the in-memory store.
type engine struct {
	store    *memory.Store
	accounts *memory.AccountRepository
	ledger   *memory.TransactionRepository
	outbox   *memory.OutboxRepository
	clock    *clock.Fixed
	limits   *usecase.LimitTracker
	transfer *usecase.TransferUseCase
	reads    *usecase.LedgerUseCase
}

func newEngine(t *testing.T, policy domain.LimitPolicy, codeGen usecase.TrackingCodeGenerator, opts ...usecase.TransferOption) *engine {
	t.Helper()

	store := memory.NewStore()
	e := &engine{
		store:    store,
		accounts: memory.NewAccountRepository(store),
		ledger:   memory.NewTransactionRepository(store),
		outbox:   memory.NewOutboxRepository(store),
		clock:    clock.NewFixed(testNow),
	}
	if codeGen == nil {
		codeGen = idgen.NewTrackingCodeGenerator()
	}

	e.limits = usecase.NewLimitTracker(e.accounts, policy)
	e.transfer = usecase.NewTransferUseCase(
		memory.NewTxManager(store),
		e.accounts,
		e.ledger,
		e.outbox,
		e.limits,
		idgen.NewULIDGenerator(),
		codeGen,
		e.clock,
		opts...,
	)
	e.reads = usecase.NewLedgerUseCase(e.accounts, e.ledger, memory.NewLedgerRepository(store), nil)

	return e
}

// open registers account n with a full set of limits.
func (e *engine) open(t *testing.T, n int, balance string) *domain.Account {
	t.Helper()

	uc := usecase.NewAccountUseCase(e.accounts, e.limits, idgen.NewULIDGenerator(), e.clock)
	acc, err := uc.RegisterAccount(context.Background(), usecase.RegisterAccountInput{
		UserID:         fmt.Sprintf("user-%d", n),
		CardNumber:     card(n),
		IBAN:           iban(n),
		OpeningBalance: decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return acc
}

func (e *engine) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acc, err := e.accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

// setLimit overwrites the stored window of an account outside any transfer.
func (e *engine) setLimit(t *testing.T, id string, ch domain.Channel, w domain.LimitWindow) {
	t.Helper()
	ctx := context.Background()
	tx, err := memory.NewTxManager(e.store).Begin(ctx)
	require.NoError(t, err)
	_, err = e.accounts.GetByIDsForUpdate(ctx, tx, []string{id})
	require.NoError(t, err)
	require.NoError(t, e.accounts.UpdateLimit(ctx, tx, id, ch, w, testNow))
	require.NoError(t, tx.Commit(ctx))
}

func card(n int) string {
	return fmt.Sprintf("603799%010d", n)
}

func iban(n int) string {
	return fmt.Sprintf("IR%024d", n)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
