package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool Pool) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(pool),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	c2c := account.Limit(domain.ChannelCardToCard)
	sameDay := account.Limit(domain.ChannelInterbankSameDay)
	batch := account.Limit(domain.ChannelInterbankBatch)

	err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:                    account.ID,
		UserID:                account.UserID,
		CardNumber:            account.CardNumber,
		Iban:                  account.IBAN,
		Balance:               decimalToNumeric(account.Balance),
		OpeningBalance:        decimalToNumeric(account.OpeningBalance),
		CardToCardRemaining:   decimalToNumeric(c2c.Remaining),
		CardToCardWindowStart: dayToPgDate(c2c.WindowStart),
		SameDayRemaining:      decimalToNumeric(sameDay.Remaining),
		SameDayWindowStart:    dayToPgDate(sameDay.WindowStart),
		BatchRemaining:        decimalToNumeric(batch.Remaining),
		BatchWindowStart:      dayToPgDate(batch.WindowStart),
		Version:               account.Version,
		CreatedAt:             timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:             timeToPgTimestamptz(account.UpdatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return domain.ErrAccountExists
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return accountOrNotFound(r.queries.GetAccountByID(ctx, id))
}

// GetByCardNumber retrieves an account by its card number.
func (r *AccountRepository) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	return accountOrNotFound(r.queries.GetAccountByCardNumber(ctx, cardNumber))
}

// GetByIBAN retrieves an account by its IBAN.
func (r *AccountRepository) GetByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	return accountOrNotFound(r.queries.GetAccountByIBAN(ctx, iban))
}

// GetByIDsForUpdate locks the accounts with SELECT ... ORDER BY id FOR UPDATE.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// ApplyDelta adds delta to the balance of a locked account and returns the new balance.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := queries.ApplyAccountDelta(ctx, generated.ApplyAccountDeltaParams{
		ID:        id,
		Delta:     decimalToNumeric(delta),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return decimal.Zero, domain.ErrAccountNotFound
		case pgErrorCode(err) == pgErrCheckViolation:
			return decimal.Zero, domain.ErrInsufficientFunds
		}
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// UpdateLimit stores the window of one channel.
func (r *AccountRepository) UpdateLimit(ctx context.Context, tx usecase.Transaction, id string, channel domain.Channel, window domain.LimitWindow, updatedAt time.Time) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	remaining := decimalToNumeric(window.Remaining)
	start := dayToPgDate(window.WindowStart)
	at := timeToPgTimestamptz(updatedAt)

	switch channel {
	case domain.ChannelCardToCard:
		return queries.UpdateCardToCardLimit(ctx, generated.UpdateCardToCardLimitParams{
			ID: id, Remaining: remaining, WindowStart: start, UpdatedAt: at,
		})
	case domain.ChannelInterbankSameDay:
		return queries.UpdateSameDayLimit(ctx, generated.UpdateSameDayLimitParams{
			ID: id, Remaining: remaining, WindowStart: start, UpdatedAt: at,
		})
	case domain.ChannelInterbankBatch:
		return queries.UpdateBatchLimit(ctx, generated.UpdateBatchLimitParams{
			ID: id, Remaining: remaining, WindowStart: start, UpdatedAt: at,
		})
	}

	return fmt.Errorf("postgres: no limit columns for channel %q", channel)
}

// ListByUser lists the accounts of a user.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func accountOrNotFound(row generated.Account, err error) (*domain.Account, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		UserID:         row.UserID,
		CardNumber:     row.CardNumber,
		IBAN:           row.Iban,
		Balance:        numericToDecimal(row.Balance),
		OpeningBalance: numericToDecimal(row.OpeningBalance),
		Limits: map[domain.Channel]domain.LimitWindow{
			domain.ChannelCardToCard: {
				Remaining:   numericToDecimal(row.CardToCardRemaining),
				WindowStart: pgDateToDay(row.CardToCardWindowStart),
			},
			domain.ChannelInterbankSameDay: {
				Remaining:   numericToDecimal(row.SameDayRemaining),
				WindowStart: pgDateToDay(row.SameDayWindowStart),
			},
			domain.ChannelInterbankBatch: {
				Remaining:   numericToDecimal(row.BatchRemaining),
				WindowStart: pgDateToDay(row.BatchWindowStart),
			},
		},
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
