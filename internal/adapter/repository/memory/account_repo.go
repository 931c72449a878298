package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create registers an account; card number and IBAN must be unused.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	if _, ok := s.byCard[account.CardNumber]; ok {
		return domain.ErrAccountExists
	}
	if _, ok := s.byIBAN[account.IBAN]; ok {
		return domain.ErrAccountExists
	}

	s.accounts[account.ID] = account.Clone()
	s.byCard[account.CardNumber] = account.ID
	s.byIBAN[account.IBAN] = account.ID

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, ok := r.store.account(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// GetByCardNumber retrieves an account by card number.
func (r *AccountRepository) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	return r.getByIndex(ctx, r.store.byCard, cardNumber)
}

// GetByIBAN retrieves an account by IBAN.
func (r *AccountRepository) GetByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	return r.getByIndex(ctx, r.store.byIBAN, iban)
}

func (r *AccountRepository) getByIndex(ctx context.Context, index map[string]string, key string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	id, ok := index[key]
	r.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return r.GetByID(ctx, id)
}

// GetByIDsForUpdate locks the accounts in ascending id order and returns
// copies owned by tx. Missing accounts are skipped.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t, err := unwrap(tx)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return nil, ErrTxClosed
		}
		if a, ok := t.accounts[id]; ok {
			t.mu.Unlock()
			accounts = append(accounts, a.Clone())
			continue
		}
		t.mu.Unlock()

		l, ok := r.store.lockFor(id)
		if !ok {
			continue
		}

		if err := l.lock(ctx); err != nil {
			return nil, err
		}

		// Read after locking so the copy reflects the last commit.
		a, ok := r.store.account(id)

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			l.unlock()
			return nil, ErrTxClosed
		}
		t.held = append(t.held, l)
		if ok {
			t.accounts[id] = a
		}
		t.mu.Unlock()

		if ok {
			accounts = append(accounts, a.Clone())
		}
	}

	return accounts, nil
}

// ApplyDelta adds delta to the staged balance of a locked account.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	t, err := unwrap(tx)
	if err != nil {
		return decimal.Zero, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.staged(id)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance, err := a.ApplyDelta(delta)
	if err != nil {
		return decimal.Zero, err
	}

	a.Balance = newBalance
	a.Version++
	a.UpdatedAt = updatedAt

	return newBalance, nil
}

// UpdateLimit stores a limit window on a locked account.
func (r *AccountRepository) UpdateLimit(ctx context.Context, tx usecase.Transaction, id string, channel domain.Channel, window domain.LimitWindow, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := unwrap(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.staged(id)
	if err != nil {
		return err
	}

	a.SetLimit(channel, window)
	a.Version++
	a.UpdatedAt = updatedAt

	return nil
}

// ListByUser lists the accounts of a user ordered by id.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	return r.list(ctx, func(a *domain.Account) bool { return a.UserID == userID }, 0, -1)
}

// List lists accounts ordered by id with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return r.list(ctx, func(*domain.Account) bool { return true }, offset, limit)
}

func (r *AccountRepository) list(ctx context.Context, match func(*domain.Account) bool, offset, limit int) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	accounts := make([]*domain.Account, 0)
	for _, a := range r.store.accounts {
		if match(a) {
			accounts = append(accounts, a.Clone())
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	if offset >= len(accounts) {
		return []*domain.Account{}, nil
	}
	accounts = accounts[offset:]
	if limit >= 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}

	return accounts, nil
}
