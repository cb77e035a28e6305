package api

import (
	"github.com/starford/liber/internal/models"
)

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn,omitempty"`
	Copies int    `json:"copies"`
}

// IssueRequest is the request body for issuing a book.
type IssueRequest struct {
	BorrowerName    string `json:"borrower_name"`
	BorrowerClass   string `json:"borrower_class,omitempty"`
	BorrowerContact string `json:"borrower_contact,omitempty"`
	Days            int    `json:"days,omitempty"`
}

// BookListResponse wraps the catalog listing.
type BookListResponse struct {
	Books []models.Book `json:"books"`
	Total int           `json:"total"`
}

// LoanListResponse wraps the loan history.
type LoanListResponse struct {
	Loans []models.LoanRecord `json:"loans"`
	Total int                 `json:"total"`
}
