// Package api wires the HTTP routes and middleware chain.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentmatch/platform/internal/api/handlers"
	"github.com/talentmatch/platform/internal/api/middleware"
)

// RouterDeps holds the handlers the router exposes.
type RouterDeps struct {
	Health  *handlers.HealthHandler
	Matches *handlers.MatchesHandler
	Profile *handlers.ProfileHandler

	// APIKey protects everything under /v1/.
	APIKey string
}

// NewRouter builds the route tree: /health is public, /v1/ requires the API key.
// Chain: RequestID -> Logging -> routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	r.Get("/health", deps.Health.Check)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.APIKey))

		r.Get("/projects/{id}/matches", deps.Matches.Get)
		r.Post("/projects/{id}/matches/refresh", deps.Matches.Refresh)

		r.Get("/users/{id}", deps.Profile.Get)
		r.Patch("/users/{id}", deps.Profile.Update)
		r.Put("/users/{id}/resume", deps.Profile.SetResume)
		r.Delete("/users/{id}", deps.Profile.Delete)
	})

	return r
}
