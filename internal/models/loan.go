package models

// Loan is a single borrow transaction. A loan is open while ReturnDate
// is nil and closed once it is set; the transition is one-way. Dates
// are ISO-8601 calendar dates (YYYY-MM-DD), no time-of-day.
type Loan struct {
	ID         int64   `json:"id"`
	BookID     int64   `json:"book_id"`
	BorrowerID int64   `json:"borrower_id"`
	IssueDate  string  `json:"issue_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date,omitempty"`
}

// Open reports whether the loan is still outstanding.
func (l *Loan) Open() bool {
	return l.ReturnDate == nil
}

// LoanRecord is a loan joined with book and borrower details, as shown
// in the loan-history view.
type LoanRecord struct {
	LoanID        int64   `json:"loan_id"`
	BookTitle     string  `json:"book_title"`
	BorrowerName  string  `json:"borrower_name"`
	BorrowerClass string  `json:"borrower_class,omitempty"`
	IssueDate     string  `json:"issue_date"`
	DueDate       string  `json:"due_date"`
	ReturnDate    *string `json:"return_date,omitempty"`
}
