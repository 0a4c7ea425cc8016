package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/baristalabs/coffee/backend/internal/middleware"
	"github.com/baristalabs/coffee/backend/internal/model/account"
	chatservice "github.com/baristalabs/coffee/backend/internal/service/chat"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 25 * time.Second
)

// Handler runs the live chat channel: turn submissions in, dispatch
// results out, over one websocket per client.
type Handler struct {
	dispatcher *chatservice.Dispatcher
	upgrader   websocket.Upgrader
}

// New creates the websocket handler.
func New(dispatcher *chatservice.Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type turnMessage struct {
	ConversationID string `json:"conversationId"`
	ProjectID      string `json:"projectId"`
	Content        string `json:"content"`
}

type outboundMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for user=%s", user.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, outboundMessage{Type: "connected"})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(readDeadline))
			h.handleMessage(ctx, conn, user, &msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, user account.User, msg *inboundMessage) {
	switch msg.Type {
	case "turn":
		h.handleTurn(ctx, conn, user, msg.Data)
	case "ping":
		h.send(conn, outboundMessage{Type: "pong"})
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleTurn(ctx context.Context, conn *websocket.Conn, user account.User, raw json.RawMessage) {
	var turn turnMessage
	if err := json.Unmarshal(raw, &turn); err != nil {
		h.sendError(conn, "invalid turn payload")
		return
	}

	h.send(conn, outboundMessage{Type: "ack", Data: map[string]string{
		"conversationId": turn.ConversationID,
	}})

	result, err := h.dispatcher.SubmitTurn(ctx, chatservice.TurnRequest{
		ConversationID: turn.ConversationID,
		ProjectID:      turn.ProjectID,
		Content:        turn.Content,
		User:           user,
	})
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, outboundMessage{Type: "message", Data: result})
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outboundMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write failed: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, outboundMessage{Type: "error", Error: message})
}
