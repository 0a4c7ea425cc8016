package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baristalabs/coffee/backend/internal/handler"
	"github.com/baristalabs/coffee/backend/internal/model/usage"
	"github.com/baristalabs/coffee/backend/internal/service/backend"
	chatservice "github.com/baristalabs/coffee/backend/internal/service/chat"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
)

type stubGateway struct {
	name string
	text string
	err  error
}

func (g *stubGateway) Name() string { return g.name }

func (g *stubGateway) Generate(context.Context, backend.Request) (string, error) {
	return g.text, g.err
}

type testEnv struct {
	router     http.Handler
	usageStore *store.MemoryUsageStore
	convs      *store.MemoryConversationStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	accounts := store.NewMemoryAccountStore()
	projects := store.NewMemoryProjectStore()
	convs := store.NewMemoryConversationStore()
	usageStore := store.NewMemoryUsageStore()

	guard := quota.NewGuard(usageStore)
	chatSvc := chatservice.NewService(convs)

	coder := &stubGateway{name: "qwen-coder", text: "coded answer"}
	assistant := &stubGateway{name: "assistant", text: "general answer"}
	dispatcher := chatservice.NewDispatcher(coder, assistant, guard, convs)

	return &testEnv{
		router:     handler.NewRouter(accounts, projects, chatSvc, dispatcher, guard),
		usageStore: usageStore,
		convs:      convs,
	}
}

func submitTurn(t *testing.T, env *testEnv, userID, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/turns", bytes.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitTurnRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	rec := submitTurn(t, env, "", "hello")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rec.Code)
	}
}

func TestSubmitTurnHappyPath(t *testing.T) {
	env := newTestEnv(t)

	rec := submitTurn(t, env, "dev@example.com", "what's the weather like in Ankara?")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var result struct {
		ConversationID string `json:"conversationId"`
		Text           string `json:"text"`
		Backend        string `json:"backend"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.Text != "general answer" || result.Backend != "assistant" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ConversationID == "" {
		t.Fatal("expected a conversation to be created")
	}

	conv, err := env.convs.Get(context.Background(), result.ConversationID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(conv.Turns) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(conv.Turns))
	}
}

func TestSubmitTurnQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.usageStore.Create(context.Background(), usage.Record{
		UserID:       "dev@example.com",
		Period:       usage.CurrentPeriod(),
		FastRequests: 50,
	})
	if err != nil {
		t.Fatalf("seed usage err: %v", err)
	}

	rec := submitTurn(t, env, "dev@example.com", "one more question")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 at the free limit, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSubmitTurnEmptyContent(t *testing.T) {
	env := newTestEnv(t)

	rec := submitTurn(t, env, "dev@example.com", "   ")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d", rec.Code)
	}
}

func TestGetForeignConversationIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	first := submitTurn(t, env, "owner@example.com", "start my chat")
	if first.Code != http.StatusOK {
		t.Fatalf("setup submit failed: %d", first.Code)
	}
	var created struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(first.Body).Decode(&created); err != nil {
		t.Fatalf("decode err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+created.ConversationID, nil)
	req.Header.Set("X-User-ID", "intruder@example.com")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign conversation, got %d", rec.Code)
	}
}
