package chat

import "time"

// Roles a turn may carry. Turns are immutable once appended.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	IsCode    bool      `json:"isCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserTurn builds a user turn stamped with the current UTC time.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

// AssistantTurn builds an assistant turn, tagging code answers.
func AssistantTurn(content string, isCode bool) Turn {
	return Turn{Role: RoleAssistant, Content: content, IsCode: isCode, CreatedAt: time.Now().UTC()}
}
