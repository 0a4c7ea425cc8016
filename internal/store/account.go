package store

import (
	"context"
	"sync"

	"github.com/baristalabs/coffee/backend/internal/model/account"
)

// AccountStore resolves caller identities to plans. The real account
// system lives with the auth collaborator; this keeps the per-user plan
// the quota guard consults.
type AccountStore interface {
	// Resolve returns the user for an identity, registering unknown
	// identities on the free plan.
	Resolve(ctx context.Context, id, fullName string) (account.User, error)
	SetPlan(ctx context.Context, id string, plan account.Plan) (account.User, error)
}

// MemoryAccountStore implements AccountStore with an in-memory map.
type MemoryAccountStore struct {
	mu    sync.RWMutex
	items map[string]account.User
}

// NewMemoryAccountStore bootstraps an empty account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{items: make(map[string]account.User)}
}

// Resolve looks up a user, creating a free-plan entry on first sight.
func (s *MemoryAccountStore) Resolve(_ context.Context, id, fullName string) (account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.items[id]; ok {
		if fullName != "" && user.FullName != fullName {
			user.FullName = fullName
			s.items[id] = user
		}
		return user, nil
	}

	user := account.User{ID: id, FullName: fullName, Plan: account.PlanFree}
	s.items[id] = user
	return user, nil
}

// SetPlan switches a user's plan, creating the user if needed.
func (s *MemoryAccountStore) SetPlan(_ context.Context, id string, plan account.Plan) (account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.items[id]
	if !ok {
		user = account.User{ID: id}
	}
	user.Plan = plan
	s.items[id] = user
	return user, nil
}
