package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages a ledger record. The tracking code is reserved until the
// transaction ends so concurrent units cannot both claim it.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := unwrap(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[record.TrackingCode]; ok {
		return domain.ErrDuplicateTrackingCode
	}
	if _, ok := s.reserved[record.TrackingCode]; ok {
		return domain.ErrDuplicateTrackingCode
	}

	s.reserved[record.TrackingCode] = struct{}{}
	t.codes[record.TrackingCode] = struct{}{}

	cp := *record
	t.records = append(t.records, &cp)

	return nil
}

// GetByTrackingCode retrieves a committed record.
func (r *TransactionRepository) GetByTrackingCode(ctx context.Context, trackingCode string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.byCode[trackingCode]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	cp := *record
	return &cp, nil
}

// ListByAccount returns up to limit records involving the account, newest first,
// strictly after cursor.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int, cursor *domain.HistoryCursor) ([]*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	records := make([]*domain.Transaction, 0)
	for _, record := range r.store.ledger {
		if record.Involves(accountID) && cursor.Admits(record) {
			cp := *record
			records = append(records, &cp)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].Before(records[j]) })

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// SumByAccount returns the totals sent and received by the account.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sent, received := decimal.Zero, decimal.Zero
	for _, record := range r.store.ledger {
		if record.SenderAccountID == accountID {
			sent = sent.Add(record.Amount)
		}
		if record.ReceiverAccountID == accountID {
			received = received.Add(record.Amount)
		}
	}

	return sent, received, nil
}
