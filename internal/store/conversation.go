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

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore is the persistence collaborator for conversations.
// Semantics are plain last-write-wins CRUD; the dispatch core relies on
// its caller's single-flight discipline for consistency.
type ConversationStore interface {
	List(ctx context.Context, ownerID string) ([]chat.Conversation, error)
	ListByProject(ctx context.Context, ownerID, projectID string) ([]chat.Conversation, error)
	Get(ctx context.Context, id string) (chat.Conversation, error)
	Create(ctx context.Context, conv chat.Conversation) (chat.Conversation, error)
	Update(ctx context.Context, conv chat.Conversation) (chat.Conversation, error)
	Delete(ctx context.Context, id string) error
}

// MemoryConversationStore implements ConversationStore with an in-memory
// map, suitable for early iterations.
type MemoryConversationStore struct {
	mu    sync.RWMutex
	items map[string]chat.Conversation
}

// NewMemoryConversationStore bootstraps an empty conversation store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{items: make(map[string]chat.Conversation)}
}

// List returns the owner's conversations, most recently updated first.
func (s *MemoryConversationStore) List(_ context.Context, ownerID string) ([]chat.Conversation, error) {
	return s.list(ownerID, ""), nil
}

// ListByProject returns the owner's conversations within one project.
func (s *MemoryConversationStore) ListByProject(_ context.Context, ownerID, projectID string) ([]chat.Conversation, error) {
	return s.list(ownerID, projectID), nil
}

func (s *MemoryConversationStore) list(ownerID, projectID string) []chat.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Conversation, 0, len(s.items))
	for _, conv := range s.items {
		if conv.OwnerID != ownerID {
			continue
		}
		if projectID != "" && conv.ProjectID != projectID {
			continue
		}
		out = append(out, copyConversation(conv))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Get retrieves a conversation by identifier.
func (s *MemoryConversationStore) Get(_ context.Context, id string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.items[id]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return copyConversation(conv), nil
}

// Create stores a new conversation, assigning ID and timestamps.
func (s *MemoryConversationStore) Create(_ context.Context, conv chat.Conversation) (chat.Conversation, error) {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	s.mu.Lock()
	s.items[conv.ID] = copyConversation(conv)
	s.mu.Unlock()

	return conv, nil
}

// Update overwrites a stored conversation (last write wins).
func (s *MemoryConversationStore) Update(_ context.Context, conv chat.Conversation) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[conv.ID]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}

	conv.CreatedAt = existing.CreatedAt
	conv.UpdatedAt = time.Now().UTC()
	s.items[conv.ID] = copyConversation(conv)
	return conv, nil
}

// Delete removes a conversation. Deletion is a presentation-layer
// operation; the dispatch core never calls it.
func (s *MemoryConversationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.items, id)
	return nil
}

func copyConversation(conv chat.Conversation) chat.Conversation {
	turns := make([]chat.Turn, len(conv.Turns))
	copy(turns, conv.Turns)
	conv.Turns = turns
	return conv
}
