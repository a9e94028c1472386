package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// AnomalyStore is an in-memory implementation of storage.AnomalyStore.
type AnomalyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AnomalyRecord // keyed by txn_id
}

// NewAnomalyStore creates a new in-memory anomaly store.
func NewAnomalyStore() *AnomalyStore {
	return &AnomalyStore{
		data: make(map[string]*domain.AnomalyRecord),
	}
}

// Upsert inserts or replaces the anomaly for a transaction. A replace keeps
// the existing acknowledged flag.
func (s *AnomalyStore) Upsert(_ context.Context, rec *domain.AnomalyRecord) error {
	if rec == nil || rec.TxnID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *rec
	if prev, exists := s.data[rec.TxnID]; exists {
		copy.Acknowledged = prev.Acknowledged
	}
	s.data[rec.TxnID] = &copy
	return nil
}

// GetByTxnID retrieves the anomaly for a transaction. Returns ErrNotFound if not exists.
func (s *AnomalyStore) GetByTxnID(_ context.Context, txnID string) (*domain.AnomalyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[txnID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *rec
	return &copy, nil
}

// GetAll retrieves all anomalies, ordered by flagged_at ASC, txn_id ASC.
func (s *AnomalyStore) GetAll(_ context.Context) ([]*domain.AnomalyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AnomalyRecord, 0, len(s.data))
	for _, rec := range s.data {
		copy := *rec
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FlaggedAtMs != result[j].FlaggedAtMs {
			return result[i].FlaggedAtMs < result[j].FlaggedAtMs
		}
		return result[i].TxnID < result[j].TxnID
	})
	return result, nil
}

// Acknowledge sets the acknowledged flag. Returns ErrNotFound if not exists.
func (s *AnomalyStore) Acknowledge(_ context.Context, txnID string, acknowledged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.data[txnID]
	if !exists {
		return storage.ErrNotFound
	}
	rec.Acknowledged = acknowledged
	return nil
}

var _ storage.AnomalyStore = (*AnomalyStore)(nil)
