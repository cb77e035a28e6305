package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/liber/internal/lending"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *lending.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog CRUD.
	r.Get("/books", h.ListBooks)
	r.Post("/books", h.AddBook)
	r.Get("/books/{id}", h.GetBook)
	r.Put("/books/{id}", h.EditBook)
	r.Delete("/books/{id}", h.DeleteBook)

	// Lending.
	r.Post("/books/{id}/issue", h.IssueBook)
	r.Post("/loans/{id}/return", h.ReturnBook)
	r.Get("/loans", h.ListLoans)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
