package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	accounthandler "github.com/baristalabs/coffee/backend/internal/handler/account"
	chathandler "github.com/baristalabs/coffee/backend/internal/handler/chat"
	projecthandler "github.com/baristalabs/coffee/backend/internal/handler/project"
	wshandler "github.com/baristalabs/coffee/backend/internal/handler/ws"
	"github.com/baristalabs/coffee/backend/internal/middleware"
	chatservice "github.com/baristalabs/coffee/backend/internal/service/chat"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	accounts store.AccountStore,
	projects store.ProjectStore,
	chatSvc *chatservice.Service,
	dispatcher *chatservice.Dispatcher,
	guard *quota.Guard,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	chatHandler := chathandler.New(chatSvc, dispatcher)
	projectHandler := projecthandler.New(projects)
	accountHandler := accounthandler.New(accounts, guard)
	wsHandler := wshandler.New(dispatcher)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Identity(accounts))

		chatHandler.RegisterRoutes(api)
		projectHandler.RegisterRoutes(api)
		accountHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
