package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// WindowPointStore is an in-memory implementation of storage.WindowPointStore.
type WindowPointStore struct {
	mu     sync.RWMutex
	points []*domain.WindowPoint
}

// NewWindowPointStore creates a new in-memory window point store.
func NewWindowPointStore() *WindowPointStore {
	return &WindowPointStore{}
}

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *WindowPointStore) ReplaceAll(_ context.Context, points []*domain.WindowPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*domain.WindowPoint, 0, len(points))
	for _, p := range points {
		if p == nil || p.TxnID == "" || p.PartitionValue == "" {
			return storage.ErrInvalidInput
		}
		copy := *p
		replacement = append(replacement, &copy)
	}
	s.points = replacement
	return nil
}

// GetByPartition retrieves points for one partition, ordered by posted_at ASC, txn_id ASC.
func (s *WindowPointStore) GetByPartition(_ context.Context, ptype domain.PartitionType, value string) ([]*domain.WindowPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WindowPoint
	for _, p := range s.points {
		if p.PartitionType == ptype && p.PartitionValue == value {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PostedAtMs != result[j].PostedAtMs {
			return result[i].PostedAtMs < result[j].PostedAtMs
		}
		return result[i].TxnID < result[j].TxnID
	})
	return result, nil
}

var _ storage.WindowPointStore = (*WindowPointStore)(nil)
