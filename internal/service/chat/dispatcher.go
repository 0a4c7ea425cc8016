package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/baristalabs/coffee/backend/internal/analysis/intent"
	"github.com/baristalabs/coffee/backend/internal/model/account"
	"github.com/baristalabs/coffee/backend/internal/model/chat"
	"github.com/baristalabs/coffee/backend/internal/service/backend"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
)

var (
	// ErrQuotaExceeded rejects a turn before any backend call. No usage
	// is recorded for a rejected turn.
	ErrQuotaExceeded = errors.New("monthly request quota exceeded")

	// ErrUpstreamUnavailable means every attempted backend failed. The
	// user turn stays in the window; nothing is charged.
	ErrUpstreamUnavailable = errors.New("all backends unavailable")

	// ErrBusy rejects a submission while the conversation already has a
	// turn in flight.
	ErrBusy = errors.New("conversation busy")

	ErrEmptyMessage = errors.New("message content is empty")
)

const (
	titleLimit    = 50
	warmupBackoff = 3 * time.Second
)

// TurnRequest is one user submission. ConversationID may be empty, in
// which case a conversation is created (optionally filed under
// ProjectID) before dispatch.
type TurnRequest struct {
	ConversationID string
	ProjectID      string
	Content        string
	User           account.User
}

// Result is the outcome of a successful dispatch.
type Result struct {
	ConversationID string              `json:"conversationId"`
	Text           string              `json:"text"`
	Category       intent.Category     `json:"category"`
	Backend        string              `json:"backend"`
	Charged        account.RequestType `json:"charged"`
}

// Dispatcher orchestrates classifier, quota guard, backend calls with
// bounded retry/fallback, and the conversation window update.
type Dispatcher struct {
	coder     backend.Gateway
	assistant backend.Gateway
	guard     *quota.Guard
	convs     store.ConversationStore
	backoff   time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewDispatcher wires the dispatch core. Either gateway may be nil when
// its credentials are not configured; dispatch degrades accordingly.
func NewDispatcher(coder, assistant backend.Gateway, guard *quota.Guard, convs store.ConversationStore) *Dispatcher {
	return &Dispatcher{
		coder:     coder,
		assistant: assistant,
		guard:     guard,
		convs:     convs,
		backoff:   warmupBackoff,
		inflight:  make(map[string]struct{}),
	}
}

// SubmitTurn runs the full dispatch protocol for one user turn:
// append user turn, authorize, classify, call the preferred backend with
// bounded retry/fallback, append the assistant turn, charge once.
func (d *Dispatcher) SubmitTurn(ctx context.Context, req TurnRequest) (Result, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return Result{}, ErrEmptyMessage
	}

	conv, err := d.ensureConversation(ctx, req, content)
	if err != nil {
		return Result{}, err
	}

	if !d.acquire(conv.ID) {
		return Result{}, ErrBusy
	}
	defer d.release(conv.ID)

	// The user turn goes in before authorization so it is never lost,
	// whatever happens downstream.
	conv.Turns = AppendTurn(conv.Turns, chat.UserTurn(content))
	conv, err = d.convs.Update(ctx, conv)
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist user turn: %w", err)
	}

	allowed, err := d.guard.Authorize(ctx, req.User, account.RequestFast)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{}, ErrQuotaExceeded
	}

	category := intent.Classify(content)
	window := PromptWindow(conv.Turns)

	text, backendName, err := d.dispatch(ctx, category, window)
	if err != nil {
		return Result{}, err
	}

	conv.Turns = AppendTurn(conv.Turns, chat.AssistantTurn(text, category == intent.Code))
	if _, err := d.convs.Update(ctx, conv); err != nil {
		return Result{}, fmt.Errorf("failed to persist assistant turn: %w", err)
	}

	// Charged exactly once per answered turn, no matter how many
	// backends were tried. A usage-store outage must not fail the turn.
	d.guard.RecordNonFatal(ctx, req.User, account.RequestFast)

	log.Printf("[dispatch] answered conversation=%s category=%s backend=%s", conv.ID, category, backendName)

	return Result{
		ConversationID: conv.ID,
		Text:           text,
		Category:       category,
		Backend:        backendName,
		Charged:        account.RequestFast,
	}, nil
}

// dispatch tries the preferred backend for the category. The coder
// backend gets one retry, only for the warming-up condition; every
// terminal coder failure falls through to the assistant without web
// grounding.
func (d *Dispatcher) dispatch(ctx context.Context, category intent.Category, window []chat.Turn) (string, string, error) {
	if category == intent.Code && d.coder != nil {
		req := backend.Request{System: coderSystemPrompt, Turns: window}

		text, err := d.coder.Generate(ctx, req)
		if err == nil {
			return text, d.coder.Name(), nil
		}
		log.Printf("[dispatch] coder backend failed: %v", err)

		if backend.Retryable(err) {
			if waitErr := d.wait(ctx); waitErr != nil {
				return "", "", waitErr
			}
			text, err = d.coder.Generate(ctx, req)
			if err == nil {
				return text, d.coder.Name(), nil
			}
			log.Printf("[dispatch] coder retry failed: %v", err)
		}

		// Code answers must not be grounded in live search.
		return d.callAssistant(ctx, backend.Request{System: fallbackSystemPrompt, Turns: window})
	}

	return d.callAssistant(ctx, backend.Request{System: generalSystemPrompt, Turns: window, WebContext: true})
}

func (d *Dispatcher) callAssistant(ctx context.Context, req backend.Request) (string, string, error) {
	if d.assistant == nil {
		return "", "", ErrUpstreamUnavailable
	}

	text, err := d.assistant.Generate(ctx, req)
	if err != nil {
		log.Printf("[dispatch] assistant backend failed: %v", err)
		return "", "", ErrUpstreamUnavailable
	}
	return text, d.assistant.Name(), nil
}

// wait sleeps out the warm-up backoff, honoring cancellation.
func (d *Dispatcher) wait(ctx context.Context) error {
	timer := time.NewTimer(d.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Dispatcher) ensureConversation(ctx context.Context, req TurnRequest, content string) (chat.Conversation, error) {
	if req.ConversationID != "" {
		conv, err := d.convs.Get(ctx, req.ConversationID)
		if errors.Is(err, store.ErrConversationNotFound) {
			return chat.Conversation{}, ErrConversationNotFound
		}
		if err != nil {
			return chat.Conversation{}, err
		}
		// Another user's conversation is indistinguishable from a
		// missing one.
		if conv.OwnerID != req.User.ID {
			return chat.Conversation{}, ErrConversationNotFound
		}
		return conv, nil
	}

	return d.convs.Create(ctx, chat.Conversation{
		OwnerID:   req.User.ID,
		ProjectID: req.ProjectID,
		Title:     deriveTitle(content),
	})
}

// deriveTitle takes the first words of the opening message as the
// conversation title.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}

func (d *Dispatcher) acquire(conversationID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inflight[conversationID]; busy {
		return false
	}
	d.inflight[conversationID] = struct{}{}
	return true
}

func (d *Dispatcher) release(conversationID string) {
	d.mu.Lock()
	delete(d.inflight, conversationID)
	d.mu.Unlock()
}
