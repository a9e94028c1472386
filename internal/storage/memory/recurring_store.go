package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// RecurringPatternStore is an in-memory implementation of storage.RecurringPatternStore.
type RecurringPatternStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RecurringPattern // keyed by pattern_id
}

// NewRecurringPatternStore creates a new in-memory recurring pattern store.
func NewRecurringPatternStore() *RecurringPatternStore {
	return &RecurringPatternStore{
		data: make(map[string]*domain.RecurringPattern),
	}
}

// Upsert inserts or replaces the pattern keyed by pattern_id.
func (s *RecurringPatternStore) Upsert(_ context.Context, p *domain.RecurringPattern) error {
	if p == nil || p.PatternID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := clonePattern(p)
	s.data[p.PatternID] = copy
	return nil
}

// GetByID retrieves a pattern by its ID. Returns ErrNotFound if not exists.
func (s *RecurringPatternStore) GetByID(_ context.Context, patternID string) (*domain.RecurringPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[patternID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return clonePattern(p), nil
}

// GetAll retrieves all patterns, ordered by merchant ASC, account_id ASC.
func (s *RecurringPatternStore) GetAll(_ context.Context) ([]*domain.RecurringPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RecurringPattern, 0, len(s.data))
	for _, p := range s.data {
		result = append(result, clonePattern(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Merchant != result[j].Merchant {
			return result[i].Merchant < result[j].Merchant
		}
		return result[i].AccountID < result[j].AccountID
	})
	return result, nil
}

// clonePattern deep-copies the nullable CV fields.
func clonePattern(p *domain.RecurringPattern) *domain.RecurringPattern {
	copy := *p
	if p.IntervalCV != nil {
		v := *p.IntervalCV
		copy.IntervalCV = &v
	}
	if p.AmountCV != nil {
		v := *p.AmountCV
		copy.AmountCV = &v
	}
	return &copy
}

var _ storage.RecurringPatternStore = (*RecurringPatternStore)(nil)
