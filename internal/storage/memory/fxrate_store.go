package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// FxRateStore is an in-memory implementation of storage.FxRateStore.
type FxRateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FxRate // keyed by date|currency
}

// NewFxRateStore creates a new in-memory fx rate store.
func NewFxRateStore() *FxRateStore {
	return &FxRateStore{
		data: make(map[string]*domain.FxRate),
	}
}

func fxKey(date, currency string) string {
	return date + "|" + currency
}

// InsertBulk adds multiple rates. Fails entire batch on duplicate (date, currency).
func (s *FxRateStore) InsertBulk(_ context.Context, rates []*domain.FxRate) error {
	if len(rates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rates))
	for _, r := range rates {
		if r == nil || r.Date == "" || r.Currency == "" {
			return storage.ErrInvalidInput
		}
		key := fxKey(r.Date, r.Currency)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rates {
		copy := *r
		s.data[fxKey(r.Date, r.Currency)] = &copy
	}
	return nil
}

// GetAll retrieves all rates, ordered by currency ASC, date ASC.
func (s *FxRateStore) GetAll(_ context.Context) ([]*domain.FxRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FxRate, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Currency != result[j].Currency {
			return result[i].Currency < result[j].Currency
		}
		return result[i].Date < result[j].Date
	})
	return result, nil
}

var _ storage.FxRateStore = (*FxRateStore)(nil)
