package chat

import (
	"context"
	"errors"

	"github.com/baristalabs/coffee/backend/internal/model/chat"
	"github.com/baristalabs/coffee/backend/internal/store"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Service covers the presentation-facing conversation operations that
// sit outside the dispatch protocol: listing, renaming, pinning, filing
// into projects and deleting.
type Service struct {
	convs store.ConversationStore
}

// NewService wraps the conversation store.
func NewService(convs store.ConversationStore) *Service {
	return &Service{convs: convs}
}

// List returns the caller's conversations, optionally limited to one
// project, most recently updated first.
func (s *Service) List(ctx context.Context, ownerID, projectID string) ([]chat.Conversation, error) {
	if projectID != "" {
		return s.convs.ListByProject(ctx, ownerID, projectID)
	}
	return s.convs.List(ctx, ownerID)
}

// Get retrieves one conversation with its turn window.
func (s *Service) Get(ctx context.Context, id string) (chat.Conversation, error) {
	conv, err := s.convs.Get(ctx, id)
	if errors.Is(err, store.ErrConversationNotFound) {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ConversationPatch carries optional metadata updates. Nil fields are
// left untouched; turns are never editable through this path.
type ConversationPatch struct {
	Title     *string `json:"title,omitempty"`
	Pinned    *bool   `json:"isPinned,omitempty"`
	ProjectID *string `json:"projectId,omitempty"`
}

// Patch applies metadata updates to a conversation.
func (s *Service) Patch(ctx context.Context, id string, patch ConversationPatch) (chat.Conversation, error) {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return chat.Conversation{}, err
	}

	if patch.Title != nil {
		conv.Title = *patch.Title
	}
	if patch.Pinned != nil {
		conv.Pinned = *patch.Pinned
	}
	if patch.ProjectID != nil {
		conv.ProjectID = *patch.ProjectID
	}

	return s.convs.Update(ctx, conv)
}

// Delete removes a conversation. The dispatch core never deletes; this
// exists for the presentation layer only.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.convs.Delete(ctx, id)
	if errors.Is(err, store.ErrConversationNotFound) {
		return ErrConversationNotFound
	}
	return err
}
