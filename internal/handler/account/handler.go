package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baristalabs/coffee/backend/internal/middleware"
	accountmodel "github.com/baristalabs/coffee/backend/internal/model/account"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
	"github.com/baristalabs/coffee/backend/pkg/utils"
)

// Handler exposes the usage indicator data and the plan upgrade.
type Handler struct {
	accounts store.AccountStore
	guard    *quota.Guard
}

// New creates the account handler.
func New(accounts store.AccountStore, guard *quota.Guard) *Handler {
	return &Handler{accounts: accounts, guard: guard}
}

// RegisterRoutes mounts the usage and account routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/usage", h.handleUsage)
	r.Post("/account/upgrade", h.handleUpgrade)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	rec, err := h.guard.Snapshot(r.Context(), user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load usage")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"plan":      user.Plan,
		"monthYear": rec.Period,
		"fast": map[string]int{
			"used":  rec.FastRequests,
			"limit": user.Plan.Allowance(accountmodel.RequestFast),
		},
		"slow": map[string]int{
			"used":  rec.SlowRequests,
			"limit": user.Plan.Allowance(accountmodel.RequestSlow),
		},
	})
}

// handleUpgrade flips the caller to the pro plan. Billing itself is an
// external collaborator; this only records the tier the quota guard
// reads.
func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	updated, err := h.accounts.SetPlan(r.Context(), user.ID, accountmodel.PlanPro)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to upgrade plan")
		return
	}

	utils.RespondJSON(w, http.StatusOK, updated)
}
