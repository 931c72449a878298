package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const applyAccountDelta = `-- name: ApplyAccountDelta :one
UPDATE accounts
SET balance = balance + $2, version = version + 1, updated_at = $3
WHERE id = $1
RETURNING balance
`

type ApplyAccountDeltaParams struct {
	ID        string             `json:"id"`
	Delta     pgtype.Numeric     `json:"delta"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) ApplyAccountDelta(ctx context.Context, arg ApplyAccountDeltaParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, applyAccountDelta, arg.ID, arg.Delta, arg.UpdatedAt)
	var balance pgtype.Numeric
	err := row.Scan(&balance)
	return balance, err
}

const countAccounts = `-- name: CountAccounts :one
SELECT COUNT(*) FROM accounts
`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countAccounts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

type CreateAccountParams struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	CardNumber            string             `json:"card_number"`
	Iban                  string             `json:"iban"`
	Balance               pgtype.Numeric     `json:"balance"`
	OpeningBalance        pgtype.Numeric     `json:"opening_balance"`
	CardToCardRemaining   pgtype.Numeric     `json:"card_to_card_remaining"`
	CardToCardWindowStart pgtype.Date        `json:"card_to_card_window_start"`
	SameDayRemaining      pgtype.Numeric     `json:"same_day_remaining"`
	SameDayWindowStart    pgtype.Date        `json:"same_day_window_start"`
	BatchRemaining        pgtype.Numeric     `json:"batch_remaining"`
	BatchWindowStart      pgtype.Date        `json:"batch_window_start"`
	Version               int64              `json:"version"`
	CreatedAt             pgtype.Timestamptz `json:"created_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.UserID,
		arg.CardNumber,
		arg.Iban,
		arg.Balance,
		arg.OpeningBalance,
		arg.CardToCardRemaining,
		arg.CardToCardWindowStart,
		arg.SameDayRemaining,
		arg.SameDayWindowStart,
		arg.BatchRemaining,
		arg.BatchWindowStart,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAccountByCardNumber = `-- name: GetAccountByCardNumber :one
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts WHERE card_number = $1
`

func (q *Queries) GetAccountByCardNumber(ctx context.Context, cardNumber string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByCardNumber, cardNumber)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CardNumber,
		&i.Iban,
		&i.Balance,
		&i.OpeningBalance,
		&i.CardToCardRemaining,
		&i.CardToCardWindowStart,
		&i.SameDayRemaining,
		&i.SameDayWindowStart,
		&i.BatchRemaining,
		&i.BatchWindowStart,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByIBAN = `-- name: GetAccountByIBAN :one
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts WHERE iban = $1
`

func (q *Queries) GetAccountByIBAN(ctx context.Context, iban string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByIBAN, iban)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CardNumber,
		&i.Iban,
		&i.Balance,
		&i.OpeningBalance,
		&i.CardToCardRemaining,
		&i.CardToCardWindowStart,
		&i.SameDayRemaining,
		&i.SameDayWindowStart,
		&i.BatchRemaining,
		&i.BatchWindowStart,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CardNumber,
		&i.Iban,
		&i.Balance,
		&i.OpeningBalance,
		&i.CardToCardRemaining,
		&i.CardToCardWindowStart,
		&i.SameDayRemaining,
		&i.SameDayWindowStart,
		&i.BatchRemaining,
		&i.BatchWindowStart,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountsByIDsForUpdate = `-- name: GetAccountsByIDsForUpdate :many
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts WHERE id = ANY($1::text[]) ORDER BY id FOR UPDATE
`

func (q *Queries) GetAccountsByIDsForUpdate(ctx context.Context, dollar_1 []string) ([]Account, error) {
	rows, err := q.db.Query(ctx, getAccountsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CardNumber,
			&i.Iban,
			&i.Balance,
			&i.OpeningBalance,
			&i.CardToCardRemaining,
			&i.CardToCardWindowStart,
			&i.SameDayRemaining,
			&i.SameDayWindowStart,
			&i.BatchRemaining,
			&i.BatchWindowStart,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listAccounts = `-- name: ListAccounts :many
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts ORDER BY id LIMIT $1 OFFSET $2
`

type ListAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CardNumber,
			&i.Iban,
			&i.Balance,
			&i.OpeningBalance,
			&i.CardToCardRemaining,
			&i.CardToCardWindowStart,
			&i.SameDayRemaining,
			&i.SameDayWindowStart,
			&i.BatchRemaining,
			&i.BatchWindowStart,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listAccountsByUser = `-- name: ListAccountsByUser :many
SELECT id, user_id, card_number, iban, balance, opening_balance, card_to_card_remaining, card_to_card_window_start, same_day_remaining, same_day_window_start, batch_remaining, batch_window_start, version, created_at, updated_at FROM accounts WHERE user_id = $1 ORDER BY id
`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CardNumber,
			&i.Iban,
			&i.Balance,
			&i.OpeningBalance,
			&i.CardToCardRemaining,
			&i.CardToCardWindowStart,
			&i.SameDayRemaining,
			&i.SameDayWindowStart,
			&i.BatchRemaining,
			&i.BatchWindowStart,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateBatchLimit = `-- name: UpdateBatchLimit :exec
UPDATE accounts
SET batch_remaining = $2, batch_window_start = $3, updated_at = $4
WHERE id = $1
`

type UpdateBatchLimitParams struct {
	ID          string             `json:"id"`
	Remaining   pgtype.Numeric     `json:"remaining"`
	WindowStart pgtype.Date        `json:"window_start"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateBatchLimit(ctx context.Context, arg UpdateBatchLimitParams) error {
	_, err := q.db.Exec(ctx, updateBatchLimit,
		arg.ID,
		arg.Remaining,
		arg.WindowStart,
		arg.UpdatedAt,
	)
	return err
}

const updateCardToCardLimit = `-- name: UpdateCardToCardLimit :exec
UPDATE accounts
SET card_to_card_remaining = $2, card_to_card_window_start = $3, updated_at = $4
WHERE id = $1
`

type UpdateCardToCardLimitParams struct {
	ID          string             `json:"id"`
	Remaining   pgtype.Numeric     `json:"remaining"`
	WindowStart pgtype.Date        `json:"window_start"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateCardToCardLimit(ctx context.Context, arg UpdateCardToCardLimitParams) error {
	_, err := q.db.Exec(ctx, updateCardToCardLimit,
		arg.ID,
		arg.Remaining,
		arg.WindowStart,
		arg.UpdatedAt,
	)
	return err
}

const updateSameDayLimit = `-- name: UpdateSameDayLimit :exec
UPDATE accounts
SET same_day_remaining = $2, same_day_window_start = $3, updated_at = $4
WHERE id = $1
`

type UpdateSameDayLimitParams struct {
	ID          string             `json:"id"`
	Remaining   pgtype.Numeric     `json:"remaining"`
	WindowStart pgtype.Date        `json:"window_start"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateSameDayLimit(ctx context.Context, arg UpdateSameDayLimitParams) error {
	_, err := q.db.Exec(ctx, updateSameDayLimit,
		arg.ID,
		arg.Remaining,
		arg.WindowStart,
		arg.UpdatedAt,
	)
	return err
}
