package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error)
	GetByIBAN(ctx context.Context, iban string) (*domain.Account, error)
	// GetByIDsForUpdate locks the rows in ascending id order for the lifetime of tx.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// ApplyDelta adds delta to the balance and returns the new balance.
	// It fails with domain.ErrInsufficientFunds if the result would be negative.
	ApplyDelta(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error)
	UpdateLimit(ctx context.Context, tx Transaction, id string, channel domain.Channel, window domain.LimitWindow, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the transaction ledger.
type TransactionRepository interface {
	// Create appends a record. It fails with domain.ErrDuplicateTrackingCode
	// and leaves tx usable when the tracking code is taken.
	Create(ctx context.Context, tx Transaction, record *domain.Transaction) error
	GetByTrackingCode(ctx context.Context, trackingCode string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit int, cursor *domain.HistoryCursor) ([]*domain.Transaction, error)
	SumByAccount(ctx context.Context, accountID string) (sent, received decimal.Decimal, err error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalOpening decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// UserRepository defines read access to users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Transaction represents one atomic unit of work.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// TrackingCodeGenerator generates customer-facing tracking codes.
type TrackingCodeGenerator interface {
	Generate() (string, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// TransferObserver receives transfer outcomes, typically for metrics.
type TransferObserver interface {
	TransferCompleted(channel domain.Channel, amount decimal.Decimal, duration time.Duration)
	TransferFailed(channel domain.Channel, kind string)
	TrackingCodeCollision()
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}
