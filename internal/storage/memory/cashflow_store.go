package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// MonthlyCashflowStore is an in-memory implementation of storage.MonthlyCashflowStore.
type MonthlyCashflowStore struct {
	mu   sync.RWMutex
	rows []*domain.MonthlyCashflow
}

// NewMonthlyCashflowStore creates a new in-memory monthly cashflow store.
func NewMonthlyCashflowStore() *MonthlyCashflowStore {
	return &MonthlyCashflowStore{}
}

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *MonthlyCashflowStore) ReplaceAll(_ context.Context, rows []*domain.MonthlyCashflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*domain.MonthlyCashflow, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.Month == "" {
			return storage.ErrInvalidInput
		}
		copy := *r
		replacement = append(replacement, &copy)
	}
	sort.Slice(replacement, func(i, j int) bool {
		return replacement[i].Month < replacement[j].Month
	})
	s.rows = replacement
	return nil
}

// GetAll retrieves all rows, ordered by month ASC.
func (s *MonthlyCashflowStore) GetAll(_ context.Context) ([]*domain.MonthlyCashflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MonthlyCashflow, 0, len(s.rows))
	for _, r := range s.rows {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

var _ storage.MonthlyCashflowStore = (*MonthlyCashflowStore)(nil)

// CategoryMonthlyStore is an in-memory implementation of storage.CategoryMonthlyStore.
type CategoryMonthlyStore struct {
	mu   sync.RWMutex
	rows []*domain.CategoryMonthly
}

// NewCategoryMonthlyStore creates a new in-memory category monthly store.
func NewCategoryMonthlyStore() *CategoryMonthlyStore {
	return &CategoryMonthlyStore{}
}

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *CategoryMonthlyStore) ReplaceAll(_ context.Context, rows []*domain.CategoryMonthly) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*domain.CategoryMonthly, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.Month == "" || r.Category == "" {
			return storage.ErrInvalidInput
		}
		copy := *r
		replacement = append(replacement, &copy)
	}
	sort.Slice(replacement, func(i, j int) bool {
		if replacement[i].Month != replacement[j].Month {
			return replacement[i].Month < replacement[j].Month
		}
		return replacement[i].Category < replacement[j].Category
	})
	s.rows = replacement
	return nil
}

// GetAll retrieves all rows, ordered by month ASC, category ASC.
func (s *CategoryMonthlyStore) GetAll(_ context.Context) ([]*domain.CategoryMonthly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CategoryMonthly, 0, len(s.rows))
	for _, r := range s.rows {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

var _ storage.CategoryMonthlyStore = (*CategoryMonthlyStore)(nil)
