package main

import (
	"github.com/go-chi/chi/v5"
)

// SetupAuthRoutes injects the accounts related endpoints.
func (api *APIHandler) SetupAuthRoutes(r chi.Router) {
	r.Get("/register", api.RegisterForm)
	r.Post("/register", api.Register)
	r.Get("/login", api.LoginForm)
	r.Post("/login", api.Login)
	r.Post("/logout", api.Logout)
}
