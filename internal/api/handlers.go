package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/liber/internal/apperr"
	"github.com/starford/liber/internal/lending"
	"github.com/starford/liber/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *lending.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *lending.Service) *Handler {
	return &Handler{svc: svc}
}

// idParam parses the numeric {id} path parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// writeError maps the error taxonomy onto HTTP statuses. Failures with
// no mapping are logged and reported as internal errors.
func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrDuplicateISBN):
		writeJSON(w, http.StatusConflict, errorBody("a book with this ISBN already exists"))
	case errors.Is(err, apperr.ErrInvariant):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("cannot reduce copies below the number currently issued"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListBooks handles GET /books. The optional q parameter filters by a
// substring of title, author, or ISBN.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err, "list books")
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	writeJSON(w, http.StatusOK, BookListResponse{Books: books, Total: len(books)})
}

// GetBook handles GET /books/{id}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	book, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err, "get book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// AddBook handles POST /books.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	book, err := h.svc.AddBook(r.Context(), lending.BookInput{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Copies: req.Copies,
	})
	if err != nil {
		writeError(w, err, "add book")
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// EditBook handles PUT /books/{id}.
func (h *Handler) EditBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	book, err := h.svc.EditBook(r.Context(), id, lending.BookInput{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Copies: req.Copies,
	})
	if err != nil {
		writeError(w, err, "edit book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /books/{id}. Deletion is idempotent, so an
// absent id still returns 204.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	if err := h.svc.DeleteBook(r.Context(), id); err != nil {
		writeError(w, err, "delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IssueBook handles POST /books/{id}/issue.
func (h *Handler) IssueBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid book id"))
		return
	}
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	loan, err := h.svc.IssueBook(r.Context(), id, lending.IssueInput{
		BorrowerName:    req.BorrowerName,
		BorrowerClass:   req.BorrowerClass,
		BorrowerContact: req.BorrowerContact,
		Days:            req.Days,
	})
	if err != nil {
		writeError(w, err, "issue book")
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ReturnBook handles POST /loans/{id}/return.
func (h *Handler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid loan id"))
		return
	}
	loan, err := h.svc.ReturnBook(r.Context(), id)
	if err != nil {
		writeError(w, err, "return book")
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// ListLoans handles GET /loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.Context())
	if err != nil {
		writeError(w, err, "list loans")
		return
	}
	writeJSON(w, http.StatusOK, LoanListResponse{Loans: loans, Total: len(loans)})
}
