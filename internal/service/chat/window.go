package chat

import "github.com/baristalabs/coffee/backend/internal/model/chat"

const (
	// HistoryWindow bounds the turns a conversation retains. Eviction is
	// strict FIFO on turn count, regardless of role.
	HistoryWindow = 10

	// promptWindow further limits how many retained turns feed the
	// prompt. Storage keeps HistoryWindow; this only caps prompt size.
	promptWindow = 8
)

// AppendTurn adds a turn and trims the oldest turns so the window never
// exceeds HistoryWindow. The turn just appended is always retained.
func AppendTurn(turns []chat.Turn, turn chat.Turn) []chat.Turn {
	out := append(turns, turn)
	if len(out) > HistoryWindow {
		out = out[len(out)-HistoryWindow:]
	}
	return out
}

// PromptWindow returns the most recent turns used for prompt
// construction, in chronological order.
func PromptWindow(turns []chat.Turn) []chat.Turn {
	if len(turns) <= promptWindow {
		return turns
	}
	return turns[len(turns)-promptWindow:]
}
