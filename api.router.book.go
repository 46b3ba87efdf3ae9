package main

import (
	"github.com/go-chi/chi/v5"
)

// SetupCatalogRoutes injects the books and authors endpoints. The listing
// is open to everyone, book details require a session, and mutating the
// catalog goes through the permission gate.
func (api *APIHandler) SetupCatalogRoutes(r chi.Router) {
	r.Get("/", api.Index)
	r.Get("/status", api.Status)

	r.Get("/list", api.ListBooks)
	r.Get("/stats", api.GetLibraryStats)

	r.Group(func(r chi.Router) {
		r.Use(api.RequirePermission(ActionCreate))
		r.Get("/form", api.CreateBookForm)
		r.Post("/form", api.CreateBook)
	})

	r.Route("/authors", func(r chi.Router) {
		r.Get("/", api.GetAllAuthors)
		r.With(api.RequirePermission(ActionCreate)).Post("/", api.CreateAuthor)
		r.With(api.RequirePermission(ActionDelete)).Post("/{id}/delete", api.DeleteAuthor)
	})

	r.Route("/{id}", func(r chi.Router) {
		r.With(api.RequirePermission(ActionView)).Get("/detail", api.DetailBook)
		r.With(api.RequirePermission(ActionUpdate)).Get("/edit", api.EditBookForm)
		r.With(api.RequirePermission(ActionUpdate)).Post("/edit", api.EditBook)
		r.With(api.RequirePermission(ActionUpdate)).Post("/cover", api.UploadBookCover)
		r.With(api.RequirePermission(ActionDelete)).Get("/delete", api.ConfirmDeleteBook)
		r.With(api.RequirePermission(ActionDelete)).Post("/delete", api.DeleteBook)
	})
}
