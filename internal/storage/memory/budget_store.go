package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// BudgetTargetStore is an in-memory implementation of storage.BudgetTargetStore.
type BudgetTargetStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BudgetTarget // keyed by category
}

// NewBudgetTargetStore creates a new in-memory budget target store.
func NewBudgetTargetStore() *BudgetTargetStore {
	return &BudgetTargetStore{
		data: make(map[string]*domain.BudgetTarget),
	}
}

// Upsert inserts or replaces the target for a category.
func (s *BudgetTargetStore) Upsert(_ context.Context, t *domain.BudgetTarget) error {
	if t == nil || t.Category == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *t
	s.data[t.Category] = &copy
	return nil
}

// GetAll retrieves all targets, ordered by category ASC.
func (s *BudgetTargetStore) GetAll(_ context.Context) ([]*domain.BudgetTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BudgetTarget, 0, len(s.data))
	for _, t := range s.data {
		copy := *t
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result, nil
}

var _ storage.BudgetTargetStore = (*BudgetTargetStore)(nil)

// BudgetVarianceStore is an in-memory implementation of storage.BudgetVarianceStore.
type BudgetVarianceStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.BudgetVarianceRecord // keyed by month
}

// NewBudgetVarianceStore creates a new in-memory budget variance store.
func NewBudgetVarianceStore() *BudgetVarianceStore {
	return &BudgetVarianceStore{
		data: make(map[string][]*domain.BudgetVarianceRecord),
	}
}

// ReplaceMonth atomically replaces the variance rows for a month.
func (s *BudgetVarianceStore) ReplaceMonth(_ context.Context, month string, records []*domain.BudgetVarianceRecord) error {
	if month == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]*domain.BudgetVarianceRecord, 0, len(records))
	for _, r := range records {
		if r == nil || r.Category == "" {
			return storage.ErrInvalidInput
		}
		copy := *r
		copy.Month = month
		rows = append(rows, &copy)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Category < rows[j].Category
	})
	s.data[month] = rows
	return nil
}

// GetByMonth retrieves variance rows for a month, ordered by category ASC.
func (s *BudgetVarianceStore) GetByMonth(_ context.Context, month string) ([]*domain.BudgetVarianceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[month]
	result := make([]*domain.BudgetVarianceRecord, 0, len(rows))
	for _, r := range rows {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

// GetAll retrieves all variance rows, ordered by month ASC, category ASC.
func (s *BudgetVarianceStore) GetAll(_ context.Context) ([]*domain.BudgetVarianceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BudgetVarianceRecord
	for _, rows := range s.data {
		for _, r := range rows {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

var _ storage.BudgetVarianceStore = (*BudgetVarianceStore)(nil)
