package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baristalabs/coffee/backend/internal/model/chat"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectStore is the persistence collaborator for sidebar projects.
type ProjectStore interface {
	List(ctx context.Context, ownerID string) ([]chat.Project, error)
	Get(ctx context.Context, id string) (chat.Project, error)
	Create(ctx context.Context, project chat.Project) (chat.Project, error)
	Update(ctx context.Context, project chat.Project) (chat.Project, error)
	Delete(ctx context.Context, id string) error
}

// MemoryProjectStore implements ProjectStore with an in-memory map.
type MemoryProjectStore struct {
	mu    sync.RWMutex
	items map[string]chat.Project
}

// NewMemoryProjectStore bootstraps an empty project store.
func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{items: make(map[string]chat.Project)}
}

// List returns the owner's projects ordered by recent activity.
func (s *MemoryProjectStore) List(_ context.Context, ownerID string) ([]chat.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Project, 0, len(s.items))
	for _, p := range s.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

// Get retrieves a project by identifier.
func (s *MemoryProjectStore) Get(_ context.Context, id string) (chat.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return chat.Project{}, ErrProjectNotFound
	}
	return p, nil
}

// Create stores a new project, assigning ID and timestamps.
func (s *MemoryProjectStore) Create(_ context.Context, project chat.Project) (chat.Project, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.LastActivity.IsZero() {
		project.LastActivity = now
	}

	s.mu.Lock()
	s.items[project.ID] = project
	s.mu.Unlock()

	return project, nil
}

// Update overwrites a stored project.
func (s *MemoryProjectStore) Update(_ context.Context, project chat.Project) (chat.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[project.ID]
	if !ok {
		return chat.Project{}, ErrProjectNotFound
	}

	project.CreatedAt = existing.CreatedAt
	project.LastActivity = time.Now().UTC()
	s.items[project.ID] = project
	return project, nil
}

// Delete removes a project. Conversations keep their projectId; the
// frontend treats dangling references as unfiled.
func (s *MemoryProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrProjectNotFound
	}
	delete(s.items, id)
	return nil
}
