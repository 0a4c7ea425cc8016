package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baristalabs/coffee/backend/internal/model/chat"
)

var (
	// ErrMissingCredential means the gateway was constructed without its
	// API credential. Configuration fault, never retried.
	ErrMissingCredential = errors.New("missing backend credential")

	// ErrModelWarmingUp means the upstream model needs time to load.
	// The only condition the dispatcher retries.
	ErrModelWarmingUp = errors.New("model is warming up")
)

// UpstreamError is a rejection from the hosted model API.
type UpstreamError struct {
	Backend string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: status=%d body=%s", e.Backend, e.Status, e.Body)
}

// TransportError wraps network or payload-decoding failures.
type TransportError struct {
	Backend string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether the dispatcher may retry the same gateway.
func Retryable(err error) bool {
	return errors.Is(err, ErrModelWarmingUp)
}

// Request carries one generation call. Turns is the prompt window in
// chronological order, normally ending with the user's latest turn.
type Request struct {
	System      string
	Turns       []chat.Turn
	MaxTokens   int
	Temperature float64
	// WebContext asks the gateway to ground the answer in live internet
	// knowledge. Only the assistant gateway honors it.
	WebContext bool
}

// Gateway is the uniform capability both hosted models implement.
type Gateway interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// FlattenPrompt renders the system instruction and the role-prefixed
// conversation window as a single completion prompt.
func FlattenPrompt(system string, turns []chat.Turn) string {
	var sb strings.Builder
	sb.WriteString(system)
	for _, turn := range turns {
		sb.WriteString("\n\n")
		if turn.Role == chat.RoleAssistant {
			sb.WriteString("Assistant: ")
		} else {
			sb.WriteString("User: ")
		}
		sb.WriteString(turn.Content)
	}
	return sb.String()
}
