package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when money was created or destroyed.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: total balance differs from total opening balance")
)

const lookupCachePrefix = "txn:"

// LedgerUseCase serves reads of the transaction ledger.
type LedgerUseCase struct {
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	ledgerRepo      LedgerRepository
	cache           Cache
}

// NewLedgerUseCase creates a new LedgerUseCase. cache may be nil.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	ledgerRepo LedgerRepository,
	cache Cache,
) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		cache:           cache,
	}
}

// HistoryInput represents input for reading an account history.
type HistoryInput struct {
	AccountID string
	Limit     int
	// Cursor is the token returned as NextCursor by the previous page.
	Cursor string
	// RequesterUserID, when set, must own the account.
	RequesterUserID string
}

// HistoryPage is one page of an account history, newest first.
type HistoryPage struct {
	Transactions []*domain.Transaction
	NextCursor   string
}

// History returns the most recent transactions where the account is sender
// or receiver, ordered by creation time descending.
func (uc *LedgerUseCase) History(ctx context.Context, input HistoryInput) (*HistoryPage, error) {
	cursor, err := domain.DecodeHistoryCursor(input.Cursor)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, wrapStorage("history", err)
	}

	if input.RequesterUserID != "" && account.UserID != input.RequesterUserID {
		return nil, domain.ErrNotAccountOwner
	}

	limit := domain.ValidateHistoryLimit(input.Limit)

	// One extra row tells whether another page exists.
	records, err := uc.transactionRepo.ListByAccount(ctx, input.AccountID, limit+1, cursor)
	if err != nil {
		return nil, wrapStorage("history", err)
	}

	page := &HistoryPage{Transactions: records}
	if len(records) > limit {
		page.Transactions = records[:limit]
		page.NextCursor = domain.CursorOf(page.Transactions[limit-1]).Encode()
	}

	return page, nil
}

// Lookup returns the transaction with trackingCode.
func (uc *LedgerUseCase) Lookup(ctx context.Context, trackingCode string) (*domain.Transaction, error) {
	if trackingCode == "" {
		return nil, domain.ErrTransactionNotFound
	}

	key := lookupCachePrefix + trackingCode
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil && cached != nil {
			var record domain.Transaction
			if err := json.Unmarshal(cached, &record); err == nil {
				return &record, nil
			}
		}
	}

	record, err := uc.transactionRepo.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, wrapStorage("lookup", err)
	}

	if uc.cache != nil {
		if data, err := json.Marshal(record); err == nil {
			if err := uc.cache.Set(ctx, key, data, LookupCacheTTL); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Str("tracking_code", trackingCode).Msg("lookup cache write failed")
			}
		}
	}

	return record, nil
}

// CheckConsistency verifies that transfers only moved money: the sum of all
// balances equals the sum of all opening balances.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	totalBalance, totalOpening, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return false, err
	}

	if !totalBalance.Equal(totalOpening) {
		return false, ErrInconsistentLedger
	}

	return true, nil
}

// wrapStorage hides non-domain errors behind a StorageError.
func wrapStorage(op string, err error) error {
	if err == nil || domain.IsKnownError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
