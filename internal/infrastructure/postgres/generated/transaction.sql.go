package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (id, tracking_code, sender_account_id, receiver_account_id, amount, channel, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tracking_code) DO NOTHING
RETURNING id
`

type CreateTransactionParams struct {
	ID                string             `json:"id"`
	TrackingCode      string             `json:"tracking_code"`
	SenderAccountID   string             `json:"sender_account_id"`
	ReceiverAccountID string             `json:"receiver_account_id"`
	Amount            pgtype.Numeric     `json:"amount"`
	Channel           string             `json:"channel"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (string, error) {
	row := q.db.QueryRow(ctx, createTransaction,
		arg.ID,
		arg.TrackingCode,
		arg.SenderAccountID,
		arg.ReceiverAccountID,
		arg.Amount,
		arg.Channel,
		arg.CreatedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const getTransactionByTrackingCode = `-- name: GetTransactionByTrackingCode :one
SELECT id, tracking_code, sender_account_id, receiver_account_id, amount, channel, created_at FROM transactions WHERE tracking_code = $1
`

func (q *Queries) GetTransactionByTrackingCode(ctx context.Context, trackingCode string) (Transaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByTrackingCode, trackingCode)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.TrackingCode,
		&i.SenderAccountID,
		&i.ReceiverAccountID,
		&i.Amount,
		&i.Channel,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionsByAccount = `-- name: ListTransactionsByAccount :many
SELECT id, tracking_code, sender_account_id, receiver_account_id, amount, channel, created_at FROM transactions
WHERE sender_account_id = $1 OR receiver_account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

type ListTransactionsByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
}

func (q *Queries) ListTransactionsByAccount(ctx context.Context, arg ListTransactionsByAccountParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByAccount, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.TrackingCode,
			&i.SenderAccountID,
			&i.ReceiverAccountID,
			&i.Amount,
			&i.Channel,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsByAccountBefore = `-- name: ListTransactionsByAccountBefore :many
SELECT id, tracking_code, sender_account_id, receiver_account_id, amount, channel, created_at FROM transactions
WHERE (sender_account_id = $1 OR receiver_account_id = $1)
  AND (created_at, id) < ($2::timestamptz, $3::text)
ORDER BY created_at DESC, id DESC
LIMIT $4
`

type ListTransactionsByAccountBeforeParams struct {
	AccountID string             `json:"account_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	ID        string             `json:"id"`
	Limit     int32              `json:"limit"`
}

func (q *Queries) ListTransactionsByAccountBefore(ctx context.Context, arg ListTransactionsByAccountBeforeParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByAccountBefore,
		arg.AccountID,
		arg.CreatedAt,
		arg.ID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.TrackingCode,
			&i.SenderAccountID,
			&i.ReceiverAccountID,
			&i.Amount,
			&i.Channel,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumTransactionsByAccount = `-- name: SumTransactionsByAccount :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE sender_account_id = $1), 0)::numeric AS sent,
    COALESCE(SUM(amount) FILTER (WHERE receiver_account_id = $1), 0)::numeric AS received
FROM transactions
WHERE sender_account_id = $1 OR receiver_account_id = $1
`

type SumTransactionsByAccountRow struct {
	Sent     pgtype.Numeric `json:"sent"`
	Received pgtype.Numeric `json:"received"`
}

func (q *Queries) SumTransactionsByAccount(ctx context.Context, accountID string) (SumTransactionsByAccountRow, error) {
	row := q.db.QueryRow(ctx, sumTransactionsByAccount, accountID)
	var i SumTransactionsByAccountRow
	err := row.Scan(&i.Sent, &i.Received)
	return i, err
}
