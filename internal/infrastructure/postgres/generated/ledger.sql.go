package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const checkLedgerConsistency = `-- name: CheckLedgerConsistency :one
SELECT
    COALESCE(SUM(balance), 0)::numeric AS total_balance,
    COALESCE(SUM(opening_balance), 0)::numeric AS total_opening_balance
FROM accounts
`

type CheckLedgerConsistencyRow struct {
	TotalBalance        pgtype.Numeric `json:"total_balance"`
	TotalOpeningBalance pgtype.Numeric `json:"total_opening_balance"`
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.TotalBalance, &i.TotalOpeningBalance)
	return i, err
}
