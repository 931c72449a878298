package memory

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency sums all balances and all opening balances.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totalBalance, totalOpening := decimal.Zero, decimal.Zero
	for _, a := range r.store.accounts {
		totalBalance = totalBalance.Add(a.Balance)
		totalOpening = totalOpening.Add(a.OpeningBalance)
	}

	return totalBalance, totalOpening, nil
}
