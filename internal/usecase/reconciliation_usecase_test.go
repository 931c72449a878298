package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/internal/usecase/mocks"
)

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	e := newEngine(t, testPolicy(), nil)
	a := e.open(t, 1, "100.00")
	b := e.open(t, 2, "50.00")

	send(t, e, a, b, "30.00")
	send(t, e, b, a, "5.25")

	rec := usecase.NewReconciliationUseCase(e.accounts, e.ledger, e.reads, e.clock)

	result, err := rec.ReconcileAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, result.Sent.Equal(amount("30.00")))
	assert.True(t, result.Received.Equal(amount("5.25")))
	assert.True(t, result.CalculatedBalance.Equal(amount("75.25")))
	assert.True(t, result.RecordedBalance.Equal(amount("75.25")))
	assert.True(t, result.IsReconciled)
	assert.Equal(t, testNow, result.LastChecked)

	_, err = rec.ReconcileAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestReconciliationUseCase_ReportFlagsDiscrepancies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockAccountRepository()
	transactions := mocks.NewMockTransactionRepository()
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)

	require.NoError(t, accounts.Create(context.Background(), &domain.Account{
		ID: "ok", Balance: amount("10"), OpeningBalance: amount("10"),
	}))
	require.NoError(t, accounts.Create(context.Background(), &domain.Account{
		ID: "drifted", Balance: amount("11"), OpeningBalance: amount("10"),
	}))

	ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(amount("21"), amount("20"), nil)

	reads := usecase.NewLedgerUseCase(accounts, transactions, ledgerRepo, nil)
	rec := usecase.NewReconciliationUseCase(accounts, transactions, reads, fixedClock{})

	report, err := rec.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalAccounts)
	assert.Equal(t, 1, report.ReconciledAccounts)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "drifted", report.Discrepancies[0].AccountID)
	assert.True(t, report.Discrepancies[0].Difference.Equal(decimal.NewFromInt(1)))
	assert.False(t, report.LedgerConsistent)
}

func TestReconciliationUseCase_ReportStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockAccountRepository()
	transactions := mocks.NewMockTransactionRepository()
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(decimal.Zero, decimal.Zero, errors.New("relation does not exist"))

	reads := usecase.NewLedgerUseCase(accounts, transactions, ledgerRepo, nil)
	rec := usecase.NewReconciliationUseCase(accounts, transactions, reads, fixedClock{})

	_, err := rec.GenerateReconciliationReport(context.Background())
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
