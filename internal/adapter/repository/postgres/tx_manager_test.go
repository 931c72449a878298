package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/usecase"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestTxManager_Begin(t *testing.T) {
	tests := []struct {
		name   string
		finish func(pool pgxmock.PgxPoolIface, tx usecase.Transaction) error
	}{
		{
			name: "commit",
			finish: func(pool pgxmock.PgxPoolIface, tx usecase.Transaction) error {
				pool.ExpectCommit()
				return tx.Commit(context.Background())
			},
		},
		{
			name: "rollback",
			finish: func(pool pgxmock.PgxPoolIface, tx usecase.Transaction) error {
				pool.ExpectRollback()
				return tx.Rollback(context.Background())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			pool.ExpectBegin()

			tx, err := NewTxManager(pool).Begin(context.Background())
			require.NoError(t, err)
			require.IsType(t, &Tx{}, tx)
			assert.NotNil(t, tx.(*Tx).PgxTx())

			require.NoError(t, tt.finish(pool, tx))
			assertExpectations(t, pool)
		})
	}
}

func TestTxManager_BeginError(t *testing.T) {
	pool := newMockPool(t)
	refused := errors.New("connection refused")
	pool.ExpectBegin().WillReturnError(refused)

	tx, err := NewTxManager(pool).Begin(context.Background())
	assert.ErrorIs(t, err, refused)
	assert.Nil(t, tx)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestTxQueries_RejectsForeignTransaction(t *testing.T) {
	_, err := txQueries(foreignTx{})
	assert.ErrorContains(t, err, "unexpected transaction type")

	_, err = txQueries((*Tx)(nil))
	assert.Error(t, err)
}
