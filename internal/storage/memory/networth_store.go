package memory

import (
	"context"
	"sort"
	"sync"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// NetWorthStore is an in-memory implementation of storage.NetWorthStore.
type NetWorthStore struct {
	mu    sync.RWMutex
	snaps []*domain.NetWorthSnapshot
}

// NewNetWorthStore creates a new in-memory net worth store.
func NewNetWorthStore() *NetWorthStore {
	return &NetWorthStore{}
}

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *NetWorthStore) ReplaceAll(_ context.Context, snaps []*domain.NetWorthSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*domain.NetWorthSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		if snap == nil || snap.Date == "" {
			return storage.ErrInvalidInput
		}
		replacement = append(replacement, cloneSnapshot(snap))
	}
	sort.Slice(replacement, func(i, j int) bool {
		return replacement[i].Date < replacement[j].Date
	})
	s.snaps = replacement
	return nil
}

// GetAll retrieves all snapshots, ordered by date ASC.
func (s *NetWorthStore) GetAll(_ context.Context) ([]*domain.NetWorthSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.NetWorthSnapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		result = append(result, cloneSnapshot(snap))
	}
	return result, nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound when empty.
func (s *NetWorthStore) GetLatest(_ context.Context) (*domain.NetWorthSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return cloneSnapshot(s.snaps[len(s.snaps)-1]), nil
}

// cloneSnapshot deep-copies the nullable delta fields.
func cloneSnapshot(snap *domain.NetWorthSnapshot) *domain.NetWorthSnapshot {
	copy := *snap
	copy.ChangeDay = cloneFloat(snap.ChangeDay)
	copy.ChangeWeek = cloneFloat(snap.ChangeWeek)
	copy.ChangeMonth = cloneFloat(snap.ChangeMonth)
	copy.ChangeYear = cloneFloat(snap.ChangeYear)
	return &copy
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var _ storage.NetWorthStore = (*NetWorthStore)(nil)
