package chat

import "time"

// Conversation holds the bounded turn window persisted per chat.
// The Turns slice is owned by the window manager; everything else is
// presentation-facing metadata.
type Conversation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId,omitempty"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Pinned    bool      `json:"isPinned,omitempty"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
