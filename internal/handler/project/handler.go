package project

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baristalabs/coffee/backend/internal/middleware"
	"github.com/baristalabs/coffee/backend/internal/model/chat"
	"github.com/baristalabs/coffee/backend/internal/store"
	"github.com/baristalabs/coffee/backend/pkg/utils"
)

// Handler exposes sidebar project CRUD.
type Handler struct {
	projects store.ProjectStore
}

// New creates the project handler.
func New(projects store.ProjectStore) *Handler {
	return &Handler{projects: projects}
}

// RegisterRoutes mounts the project routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Post("/projects", h.handleCreate)
	r.Patch("/projects/{projectID}", h.handleUpdate)
	r.Delete("/projects/{projectID}", h.handleDelete)
}

type projectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	projects, err := h.projects.List(r.Context(), user.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	utils.RespondJSON(w, http.StatusOK, projects)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	project, err := h.projects.Create(r.Context(), chat.Project{
		OwnerID:     user.ID,
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	existing, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil || existing.OwnerID != user.ID {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}

	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Name != "" {
		existing.Name = payload.Name
	}
	existing.Description = payload.Description

	project, err := h.projects.Update(r.Context(), existing)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	utils.RespondJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	existing, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil || existing.OwnerID != user.ID {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.projects.Delete(r.Context(), existing.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
