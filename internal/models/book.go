// Package models defines the domain types for Liber.
package models

// Book is a title in the catalog. Copies is the total number of
// physical units owned; Available is how many are on the shelf.
// Invariant: 0 <= Available <= Copies, and Available equals Copies
// minus the number of open loans for this book.
type Book struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	ISBN      *string `json:"isbn,omitempty"`
	Copies    int     `json:"copies"`
	Available int     `json:"available"`
}

// Borrower is a person who borrows books. Identity for deduplication
// is the (Name, Contact) pair; Class is free-form affiliation text.
type Borrower struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Class   string `json:"class,omitempty"`
	Contact string `json:"contact,omitempty"`
}
