package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// MiddlewareMap contains middlewares chain to
// use for public-facing and ops requests.
type MiddlewareMap struct {
	public *Middlewares
	ops    *Middlewares
}

// SetupRoutes enforces the api routes.
func (api *APIHandler) SetupRoutes(m *MiddlewareMap) *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "User-Agent", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.NotFound(api.NotFound())

	router.Group(func(r chi.Router) {
		for _, mw := range *m.public {
			r.Use(mw)
		}
		api.SetupCatalogRoutes(r)
		api.SetupAuthRoutes(r)
	})

	if api.config.OpsEndpointsEnable {
		router.Group(func(r chi.Router) {
			for _, mw := range *m.ops {
				r.Use(mw)
			}
			api.SetupOpsRoutes(r)
		})
	}

	return router
}
