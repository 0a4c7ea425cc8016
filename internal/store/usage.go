package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baristalabs/coffee/backend/internal/model/usage"
)

var ErrUsageRecordNotFound = errors.New("usage record not found")

// UsageStore is the persistence collaborator for per-period counters.
type UsageStore interface {
	// Find returns the record for (period, user) when one exists.
	Find(ctx context.Context, period, userID string) (usage.Record, bool, error)
	Create(ctx context.Context, rec usage.Record) (usage.Record, error)
	Update(ctx context.Context, rec usage.Record) (usage.Record, error)
}

// MemoryUsageStore implements UsageStore with an in-memory map keyed by
// (period, user).
type MemoryUsageStore struct {
	mu    sync.RWMutex
	items map[string]usage.Record
}

// NewMemoryUsageStore bootstraps an empty usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{items: make(map[string]usage.Record)}
}

func usageKey(period, userID string) string {
	return period + "|" + userID
}

// Find returns the period record for a user, reporting absence without error.
func (s *MemoryUsageStore) Find(_ context.Context, period, userID string) (usage.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[usageKey(period, userID)]
	return rec, ok, nil
}

// Create stores the first record of a period for a user.
func (s *MemoryUsageStore) Create(_ context.Context, rec usage.Record) (usage.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.mu.Lock()
	s.items[usageKey(rec.Period, rec.UserID)] = rec
	s.mu.Unlock()

	return rec, nil
}

// Update overwrites an existing record.
func (s *MemoryUsageStore) Update(_ context.Context, rec usage.Record) (usage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey(rec.Period, rec.UserID)
	if _, ok := s.items[key]; !ok {
		return usage.Record{}, ErrUsageRecordNotFound
	}

	rec.UpdatedAt = time.Now().UTC()
	s.items[key] = rec
	return rec, nil
}
