package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// ForecastStore is an in-memory implementation of storage.ForecastStore.
type ForecastStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ForecastRecord // keyed by forecast_id
}

// NewForecastStore creates a new in-memory forecast store.
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		data: make(map[string]*domain.ForecastRecord),
	}
}

// Upsert inserts or replaces the forecast keyed by forecast_id.
func (s *ForecastStore) Upsert(_ context.Context, f *domain.ForecastRecord) error {
	if f == nil || f.ForecastID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *f
	s.data[f.ForecastID] = &copy
	return nil
}

// GetAll retrieves all forecasts, ordered by forecast_month ASC, scope ASC, category ASC.
func (s *ForecastStore) GetAll(_ context.Context) ([]*domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ForecastRecord, 0, len(s.data))
	for _, f := range s.data {
		copy := *f
		result = append(result, &copy)
	}
	sortForecasts(result)
	return result, nil
}

// GetByMonth retrieves forecasts targeting one month.
func (s *ForecastStore) GetByMonth(_ context.Context, month string) ([]*domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ForecastRecord
	for _, f := range s.data {
		if f.ForecastMonth == month {
			copy := *f
			result = append(result, &copy)
		}
	}
	sortForecasts(result)
	return result, nil
}

func sortForecasts(records []*domain.ForecastRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].ForecastMonth != records[j].ForecastMonth {
			return records[i].ForecastMonth < records[j].ForecastMonth
		}
		if records[i].Scope != records[j].Scope {
			return records[i].Scope < records[j].Scope
		}
		return records[i].Category < records[j].Category
	})
}

var _ storage.ForecastStore = (*ForecastStore)(nil)
