package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/clock"
	"github.com/iho/bankledger/internal/adapter/idgen"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the migrations. The test is
// skipped when DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// migrationsPath walks up from the working directory to the repository's
// migrations folder.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(filepath.Join(candidate, "000001_init.up.sql")); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("migrations directory not found")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE transactions, outbox_events, accounts, users CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

var accountSeq atomic.Int64

// CardNumber returns a well formed card number for fixture n.
func CardNumber(n int64) string {
	return fmt.Sprintf("603799%010d", n)
}

// IBAN returns a well formed IBAN for fixture n.
func IBAN(n int64) string {
	return fmt.Sprintf("IR%024d", n)
}

// CreateTestAccount inserts an account owned by userID with balance and full
// daily limits for today.
func (db *TestDB) CreateTestAccount(ctx context.Context, userID string, balance decimal.Decimal, policy domain.LimitPolicy) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	today := policy.Today(now)
	n := accountSeq.Add(1)

	account := &domain.Account{
		ID:             ulid.Make().String(),
		UserID:         userID,
		CardNumber:     CardNumber(n),
		IBAN:           IBAN(n),
		Balance:        balance,
		OpeningBalance: balance,
		Limits:         make(map[domain.Channel]domain.LimitWindow, len(domain.Channels)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, ch := range domain.Channels {
		account.Limits[ch] = policy.FullWindow(ch, today)
	}

	date := pgtype.Date{Time: today, Valid: true}
	ts := pgtype.Timestamptz{Time: now, Valid: true}

	err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:                    account.ID,
		UserID:                userID,
		CardNumber:            account.CardNumber,
		Iban:                  account.IBAN,
		Balance:               numeric(balance),
		OpeningBalance:        numeric(balance),
		CardToCardRemaining:   numeric(policy.Cap(domain.ChannelCardToCard)),
		CardToCardWindowStart: date,
		SameDayRemaining:      numeric(policy.Cap(domain.ChannelInterbankSameDay)),
		SameDayWindowStart:    date,
		BatchRemaining:        numeric(policy.Cap(domain.ChannelInterbankBatch)),
		BatchWindowStart:      date,
		CreatedAt:             ts,
		UpdatedAt:             ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

// DefaultPolicy is the limit policy the integration tests run with.
func DefaultPolicy() domain.LimitPolicy {
	return domain.LimitPolicy{
		Caps: map[domain.Channel]decimal.Decimal{
			domain.ChannelCardToCard:       decimal.NewFromInt(100_000_000),
			domain.ChannelInterbankSameDay: decimal.NewFromInt(100_000_000),
			domain.ChannelInterbankBatch:   decimal.NewFromInt(100_000_000),
		},
		Location: time.UTC,
	}
}

// Stack is the postgres backed engine under test.
type Stack struct {
	Accounts       *postgresRepo.AccountRepository
	Transactions   *postgresRepo.TransactionRepository
	Outbox         *postgresRepo.OutboxRepository
	Users          *postgresRepo.UserRepository
	Limits         *usecase.LimitTracker
	Transfer       *usecase.TransferUseCase
	Account        *usecase.AccountUseCase
	Ledger         *usecase.LedgerUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

// NewStack wires the use cases over db with the given policy and clock.
func NewStack(db *TestDB, policy domain.LimitPolicy, clk usecase.Clock, opts ...usecase.TransferOption) *Stack {
	if clk == nil {
		clk = clock.New()
	}

	pool := db.Pool
	s := &Stack{
		Accounts:     postgresRepo.NewAccountRepository(pool),
		Transactions: postgresRepo.NewTransactionRepository(pool),
		Outbox:       postgresRepo.NewOutboxRepository(pool),
		Users:        postgresRepo.NewUserRepository(pool),
	}

	idGen := idgen.NewULIDGenerator()
	s.Limits = usecase.NewLimitTracker(s.Accounts, policy)

	opts = append([]usecase.TransferOption{usecase.WithRetrier(postgresRepo.NewRetrier())}, opts...)
	s.Transfer = usecase.NewTransferUseCase(
		postgresRepo.NewTxManager(pool), s.Accounts, s.Transactions, s.Outbox,
		s.Limits, idGen, idgen.NewTrackingCodeGenerator(), clk, opts...,
	)
	s.Account = usecase.NewAccountUseCase(s.Accounts, s.Limits, idGen, clk)
	s.Ledger = usecase.NewLedgerUseCase(s.Accounts, s.Transactions, postgresRepo.NewLedgerRepository(pool), nil)
	s.Reconciliation = usecase.NewReconciliationUseCase(s.Accounts, s.Transactions, s.Ledger, clk)

	return s
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
