package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/usersync/users-service/internal/api"
	"github.com/usersync/users-service/internal/api/middleware"
)

// setupRouter registers every route with its middleware chain.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	users := app.userHandler()
	interests := app.interestHandler()

	r.Route("/api", func(r chi.Router) {
		r.Use(app.identity.Authenticate)

		// Bootstrap: a verified identity without a user yet.
		r.Post("/users/sync", users.Sync)

		r.Group(func(r chi.Router) {
			r.Use(app.actors.RequireActor)

			r.Get("/users", users.List)
			r.Get("/users/me", users.Me)
			r.Get("/users/search", users.Search)
			r.Get("/users/{id}", users.Get)
			r.Patch("/users/{id}", users.Update)
			r.Delete("/users/{id}", users.Delete)

			r.Get("/users/{id}/interests", interests.List)
			r.Post("/users/{id}/interests", interests.Add)
			r.Delete("/users/{id}/interests/{interestID}", interests.Remove)

			r.Get("/interests", interests.Catalog)
		})
	})

	r.Get("/health", api.Health)
	r.Get("/", api.Health)

	return r
}
