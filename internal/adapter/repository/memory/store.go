// Package memory is an in-process store with the same atomicity and locking
// guarantees as the PostgreSQL adapter. Accounts are locked one by one in
// ascending id order; writes are staged in the transaction and applied on commit.
package memory

import (
	"context"
	"sync"

	"github.com/iho/bankledger/internal/domain"
)

// accountLock is a mutex that can be abandoned when a context ends.
type accountLock chan struct{}

func (l accountLock) lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l accountLock) unlock() {
	<-l
}

// Store holds committed state shared by the repositories.
type Store struct {
	mu sync.RWMutex

	accounts map[string]*domain.Account
	byCard   map[string]string
	byIBAN   map[string]string
	locks    map[string]accountLock

	ledger   []*domain.Transaction
	byCode   map[string]*domain.Transaction
	reserved map[string]struct{}

	users      map[string]*domain.User
	byUsername map[string]string

	outbox []*domain.OutboxEvent
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]*domain.Account),
		byCard:     make(map[string]string),
		byIBAN:     make(map[string]string),
		locks:      make(map[string]accountLock),
		byCode:     make(map[string]*domain.Transaction),
		reserved:   make(map[string]struct{}),
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

func (s *Store) lockFor(id string) (accountLock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return nil, false
	}

	l, ok := s.locks[id]
	if !ok {
		l = make(accountLock, 1)
		s.locks[id] = l
	}
	return l, true
}

func (s *Store) account(id string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}
