package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baristalabs/coffee/backend/internal/middleware"
	chatservice "github.com/baristalabs/coffee/backend/internal/service/chat"
	"github.com/baristalabs/coffee/backend/pkg/utils"
)

// Handler exposes conversations and the turn-submission operation.
type Handler struct {
	chatSvc    *chatservice.Service
	dispatcher *chatservice.Dispatcher
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, dispatcher *chatservice.Dispatcher) *Handler {
	return &Handler{chatSvc: chatSvc, dispatcher: dispatcher}
}

// RegisterRoutes mounts the conversation and turn routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleListConversations)
	r.Get("/conversations/{conversationID}", h.handleGetConversation)
	r.Patch("/conversations/{conversationID}", h.handlePatchConversation)
	r.Delete("/conversations/{conversationID}", h.handleDeleteConversation)
	r.Post("/turns", h.handleSubmitTurn)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	conversations, err := h.chatSvc.List(r.Context(), user.ID, r.URL.Query().Get("projectId"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	utils.RespondJSON(w, http.StatusOK, conversations)
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	conv, err := h.chatSvc.Get(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil || conv.OwnerID != user.ID {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, conv)
}

func (h *Handler) handlePatchConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id := chi.URLParam(r, "conversationID")
	existing, err := h.chatSvc.Get(r.Context(), id)
	if err != nil || existing.OwnerID != user.ID {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var patch chatservice.ConversationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.chatSvc.Patch(r.Context(), id, patch)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update conversation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, conv)
}

func (h *Handler) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id := chi.URLParam(r, "conversationID")
	existing, err := h.chatSvc.Get(r.Context(), id)
	if err != nil || existing.OwnerID != user.ID {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	if err := h.chatSvc.Delete(r.Context(), id); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload struct {
		ConversationID string `json:"conversationId"`
		ProjectID      string `json:"projectId"`
		Content        string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.dispatcher.SubmitTurn(r.Context(), chatservice.TurnRequest{
		ConversationID: payload.ConversationID,
		ProjectID:      payload.ProjectID,
		Content:        payload.Content,
		User:           user,
	})
	if err != nil {
		respondDispatchError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// respondDispatchError maps the dispatch error taxonomy onto HTTP.
func respondDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "message content is required")
	case errors.Is(err, chatservice.ErrConversationNotFound):
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, chatservice.ErrQuotaExceeded):
		utils.RespondError(w, http.StatusTooManyRequests, "monthly request limit reached, upgrade to Pro for more")
	case errors.Is(err, chatservice.ErrBusy):
		utils.RespondError(w, http.StatusConflict, "a turn is already in flight for this conversation")
	case errors.Is(err, chatservice.ErrUpstreamUnavailable):
		utils.RespondError(w, http.StatusBadGateway, "failed to get a response, please try again")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to process turn")
	}
}
