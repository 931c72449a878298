package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    m.store,
		accounts: make(map[string]*domain.Account),
		codes:    make(map[string]struct{}),
	}, nil
}

// Tx stages writes until Commit.
type Tx struct {
	store *Store

	mu       sync.Mutex
	held     []accountLock
	accounts map[string]*domain.Account
	records  []*domain.Transaction
	codes    map[string]struct{}
	outbox   []*domain.OutboxEvent
	closed   bool
}

// Commit applies the staged writes atomically and releases all locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}

	if err := ctx.Err(); err != nil {
		t.finish()
		return err
	}

	s := t.store
	s.mu.Lock()
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for _, r := range t.records {
		s.ledger = append(s.ledger, r)
		s.byCode[r.TrackingCode] = r
	}
	s.outbox = append(s.outbox, t.outbox...)
	s.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.finish()
	return nil
}

// finish releases code reservations and account locks. Callers hold t.mu.
func (t *Tx) finish() {
	s := t.store
	s.mu.Lock()
	for code := range t.codes {
		delete(s.reserved, code)
	}
	s.mu.Unlock()

	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].unlock()
	}

	t.held = nil
	t.accounts = nil
	t.records = nil
	t.outbox = nil
	t.closed = true
}

// staged returns the locked copy of an account.
func (t *Tx) staged(id string) (*domain.Account, error) {
	if t.closed {
		return nil, ErrTxClosed
	}
	a, ok := t.accounts[id]
	if !ok {
		return nil, fmt.Errorf("memory: account %s is not locked by this transaction", id)
	}
	return a, nil
}

func unwrap(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}
	return t, nil
}
