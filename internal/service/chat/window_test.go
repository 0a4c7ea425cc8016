package chat

import (
	"fmt"
	"testing"

	"github.com/baristalabs/coffee/backend/internal/model/chat"
)

func TestAppendTurnKeepsWindowBounded(t *testing.T) {
	var turns []chat.Turn
	total := HistoryWindow + 7

	for i := 0; i < total; i++ {
		turns = AppendTurn(turns, chat.UserTurn(fmt.Sprintf("turn-%d", i)))
		if len(turns) > HistoryWindow {
			t.Fatalf("window grew to %d after append %d", len(turns), i)
		}
	}

	if len(turns) != HistoryWindow {
		t.Fatalf("expected window of %d, got %d", HistoryWindow, len(turns))
	}

	// The retained turns must be exactly the most recent ones, in order.
	for i, turn := range turns {
		want := fmt.Sprintf("turn-%d", total-HistoryWindow+i)
		if turn.Content != want {
			t.Fatalf("position %d: got %q want %q", i, turn.Content, want)
		}
	}
}

func TestAppendTurnShortConversation(t *testing.T) {
	var turns []chat.Turn
	turns = AppendTurn(turns, chat.UserTurn("hello"))
	turns = AppendTurn(turns, chat.AssistantTurn("hi there", false))

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "hello" || turns[1].Content != "hi there" {
		t.Fatalf("unexpected order: %q, %q", turns[0].Content, turns[1].Content)
	}
}

func TestPromptWindowCapsAtEight(t *testing.T) {
	var turns []chat.Turn
	for i := 0; i < HistoryWindow; i++ {
		turns = AppendTurn(turns, chat.UserTurn(fmt.Sprintf("turn-%d", i)))
	}

	window := PromptWindow(turns)
	if len(window) != promptWindow {
		t.Fatalf("expected prompt window of %d, got %d", promptWindow, len(window))
	}
	if window[len(window)-1].Content != turns[len(turns)-1].Content {
		t.Fatal("prompt window must end with the latest turn")
	}
}

func TestPromptWindowPassesShortHistoriesThrough(t *testing.T) {
	turns := []chat.Turn{chat.UserTurn("only one")}
	window := PromptWindow(turns)
	if len(window) != 1 || window[0].Content != "only one" {
		t.Fatalf("unexpected window: %+v", window)
	}
}
