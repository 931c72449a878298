package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool Pool) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(pool),
	}
}

// Create appends a ledger record. A taken tracking code inserts nothing and
// returns ErrDuplicateTrackingCode; the transaction stays usable.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	_, err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                record.ID,
		TrackingCode:      record.TrackingCode,
		SenderAccountID:   record.SenderAccountID,
		ReceiverAccountID: record.ReceiverAccountID,
		Amount:            decimalToNumeric(record.Amount),
		Channel:           string(record.Channel),
		CreatedAt:         timeToPgTimestamptz(record.CreatedAt),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateTrackingCode
	}

	return err
}

// GetByTrackingCode retrieves a record by its tracking code.
func (r *TransactionRepository) GetByTrackingCode(ctx context.Context, trackingCode string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByTrackingCode(ctx, trackingCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// ListByAccount returns up to limit records involving the account, newest
// first, strictly after cursor when one is given.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int, cursor *domain.HistoryCursor) ([]*domain.Transaction, error) {
	var (
		rows []generated.Transaction
		err  error
	)

	if cursor == nil {
		rows, err = r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
			AccountID: accountID,
			Limit:     int32(limit),
		})
	} else {
		rows, err = r.queries.ListTransactionsByAccountBefore(ctx, generated.ListTransactionsByAccountBeforeParams{
			AccountID: accountID,
			CreatedAt: timeToPgTimestamptz(cursor.CreatedAt),
			ID:        cursor.ID,
			Limit:     int32(limit),
		})
	}
	if err != nil {
		return nil, err
	}

	records := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToTransaction(row))
	}

	return records, nil
}

// SumByAccount returns the totals sent and received by the account.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	row, err := r.queries.SumTransactionsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.Sent), numericToDecimal(row.Received), nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                row.ID,
		TrackingCode:      row.TrackingCode,
		SenderAccountID:   row.SenderAccountID,
		ReceiverAccountID: row.ReceiverAccountID,
		Amount:            numericToDecimal(row.Amount),
		Channel:           domain.Channel(row.Channel),
		CreatedAt:         row.CreatedAt.Time.UTC(),
	}
}
