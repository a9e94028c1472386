package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Transaction // keyed by txn_id
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.Transaction),
	}
}

// Insert adds a new transaction. Returns ErrDuplicateKey if txn_id exists.
func (s *TransactionStore) Insert(_ context.Context, t *domain.Transaction) error {
	if t == nil || t.TxnID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TxnID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TxnID] = &copy
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(_ context.Context, txns []*domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		if t == nil || t.TxnID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TxnID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TxnID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TxnID] = struct{}{}
	}

	for _, t := range txns {
		copy := *t
		s.data[t.TxnID] = &copy
	}
	return nil
}

// GetAll retrieves every transaction, ordered by posted_at ASC, txn_id ASC.
func (s *TransactionStore) GetAll(_ context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(s.data))
	for _, t := range s.data {
		copy := *t
		result = append(result, &copy)
	}
	sortTransactions(result)
	return result, nil
}

// GetByAccountID retrieves all transactions for an account, ordered by posted_at ASC, txn_id ASC.
func (s *TransactionStore) GetByAccountID(_ context.Context, accountID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, t := range s.data {
		if t.AccountID == accountID {
			copy := *t
			result = append(result, &copy)
		}
	}
	sortTransactions(result)
	return result, nil
}

// GetByTimeRange retrieves transactions posted within [start, end] (inclusive).
func (s *TransactionStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, t := range s.data {
		if !t.PostedAt.Before(start) && !t.PostedAt.After(end) {
			copy := *t
			result = append(result, &copy)
		}
	}
	sortTransactions(result)
	return result, nil
}

func sortTransactions(txns []*domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].PostedAt.Equal(txns[j].PostedAt) {
			return txns[i].PostedAt.Before(txns[j].PostedAt)
		}
		return txns[i].TxnID < txns[j].TxnID
	})
}

var _ storage.TransactionStore = (*TransactionStore)(nil)
