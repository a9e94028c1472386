package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Account // keyed by account_id
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[string]*domain.Account),
	}
}

// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
func (s *AccountStore) Insert(_ context.Context, a *domain.Account) error {
	if a == nil || a.AccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AccountID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *a
	s.data[a.AccountID] = &copy
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *AccountStore) GetByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[accountID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *a
	return &copy, nil
}

// GetAll retrieves all accounts, ordered by account_id ASC.
func (s *AccountStore) GetAll(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Account, 0, len(s.data))
	for _, a := range s.data {
		copy := *a
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID < result[j].AccountID
	})
	return result, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
