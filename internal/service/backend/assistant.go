package backend

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/baristalabs/coffee/backend/internal/config"
	"github.com/baristalabs/coffee/backend/internal/model/chat"
)

// webContextHint reframes the system instruction when an answer should
// be grounded in live internet knowledge.
const webContextHint = "\n\nAnswer accurately and concisely using up-to-date web context. Prefer current facts over speculation."

// AssistantGateway serves general questions through the hosted chat
// model and doubles as the fallback when the coder backend fails.
type AssistantGateway struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewAssistant builds the chat chain: system template, history
// placeholder, then the user's query.
func NewAssistant(ctx context.Context, cfg config.AssistantConfig) (*AssistantGateway, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &AssistantGateway{chatModel: chatModel, chain: runnable}, nil
}

// Name identifies the gateway in dispatch results.
func (g *AssistantGateway) Name() string {
	return "assistant"
}

// Generate runs the chain over the conversation window.
func (g *AssistantGateway) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	if req.WebContext {
		system += webContextHint
	}

	history, query := splitHistory(req.Turns)
	input := map[string]any{
		"system":  system,
		"history": history,
		"query":   query,
	}

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return "", &TransportError{Backend: "assistant", Err: err}
	}

	return response.Content, nil
}

// splitHistory maps stored turns onto chain input: everything before the
// trailing user turn becomes history, the trailing user turn the query.
func splitHistory(turns []chat.Turn) ([]*schema.Message, string) {
	if len(turns) == 0 {
		return nil, ""
	}

	query := ""
	last := len(turns)
	if turns[last-1].Role == chat.RoleUser {
		query = turns[last-1].Content
		last--
	}

	history := make([]*schema.Message, 0, last)
	for _, turn := range turns[:last] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}

	return history, query
}
