// Package lending implements the lending ledger operations: the
// business rules over books, borrowers, and loans. Persistence and
// invariant enforcement under concurrency live in ledgerdb; this layer
// validates input, computes dates, and logs.
package lending

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/liber/internal/apperr"
	"github.com/starford/liber/internal/ledgerdb"
	"github.com/starford/liber/internal/models"
)

// DateLayout is the calendar-date format used everywhere: dates carry
// no time-of-day and are persisted as ISO-8601 strings.
const DateLayout = "2006-01-02"

// DefaultLoanDays is used when the caller does not specify a period.
const DefaultLoanDays = 14

// Service coordinates ledger operations.
type Service struct {
	ledger  ledgerdb.Ledger
	now     func() time.Time
	publish func(event string, data map[string]any)
}

// Option is a functional option for configuring the service.
type Option func(*Service)

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sets a sink for ledger change events.
func WithPublisher(publish func(event string, data map[string]any)) Option {
	return func(s *Service) { s.publish = publish }
}

// NewService creates a new lending service.
func NewService(ledger ledgerdb.Ledger, opts ...Option) *Service {
	s := &Service{ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookInput carries the caller-supplied fields of a book.
type BookInput struct {
	Title  string
	Author string
	ISBN   string
	Copies int
}

// Validate checks the input after trimming.
func (in *BookInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Author, validation.Required),
		validation.Field(&in.Copies, validation.Required, validation.Min(1)),
	)
}

// normalize trims text fields the way the intake forms do.
func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
}

// isbnOrNil maps an empty ISBN to NULL so the UNIQUE constraint only
// applies to books that actually have one.
func (in *BookInput) isbnOrNil() *string {
	if in.ISBN == "" {
		return nil
	}
	return &in.ISBN
}

// AddBook creates a new book with all copies on the shelf.
func (s *Service) AddBook(ctx context.Context, in BookInput) (*models.Book, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	book := &models.Book{
		Title:     in.Title,
		Author:    in.Author,
		ISBN:      in.isbnOrNil(),
		Copies:    in.Copies,
		Available: in.Copies,
	}
	if err := s.ledger.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	slog.Info("book added", slog.Int64("book_id", book.ID), slog.String("title", book.Title))
	s.emit("book.added", map[string]any{"book_id": book.ID})
	return book, nil
}

// EditBook rewrites a book's fields. Changing the copy count shifts
// availability by the same delta; the store rejects reductions below
// the number currently on loan.
func (s *Service) EditBook(ctx context.Context, id int64, in BookInput) (*models.Book, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	book, err := s.ledger.UpdateBook(ctx, id, in.Title, in.Author, in.isbnOrNil(), in.Copies)
	if err != nil {
		return nil, err
	}

	slog.Info("book updated", slog.Int64("book_id", id))
	s.emit("book.updated", map[string]any{"book_id": id})
	return book, nil
}

// DeleteBook removes a book. Deletion is idempotent and performs no
// open-loan check; loans referencing the book keep their book_id.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.ledger.DeleteBook(ctx, id); err != nil {
		return err
	}
	slog.Info("book deleted", slog.Int64("book_id", id))
	s.emit("book.deleted", map[string]any{"book_id": id})
	return nil
}

// GetBook retrieves a single book.
func (s *Service) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	return s.ledger.GetBook(ctx, id)
}

// ListBooks returns the catalog, optionally filtered by a substring
// of title, author, or ISBN.
func (s *Service) ListBooks(ctx context.Context, search string) ([]models.Book, error) {
	return s.ledger.ListBooks(ctx, strings.TrimSpace(search))
}

// IssueInput carries the fields of an issue request.
type IssueInput struct {
	BorrowerName    string
	BorrowerClass   string
	BorrowerContact string
	Days            int
}

// Validate checks the issue request. Days of zero means "use default".
func (in *IssueInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.BorrowerName, validation.Required),
		validation.Field(&in.Days, validation.Min(0)),
	)
}

// IssueBook lends one copy of the book to the named borrower. The
// borrower is reused when a record with the same (name, contact)
// already exists, otherwise created as part of the same transaction.
func (s *Service) IssueBook(ctx context.Context, bookID int64, in IssueInput) (*models.Loan, error) {
	in.BorrowerName = strings.TrimSpace(in.BorrowerName)
	in.BorrowerClass = strings.TrimSpace(in.BorrowerClass)
	in.BorrowerContact = strings.TrimSpace(in.BorrowerContact)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	days := in.Days
	if days == 0 {
		days = DefaultLoanDays
	}

	issued := s.now()
	issueDate := issued.Format(DateLayout)
	dueDate := issued.AddDate(0, 0, days).Format(DateLayout)

	loan, err := s.ledger.IssueBook(ctx, bookID, models.Borrower{
		Name:    in.BorrowerName,
		Class:   in.BorrowerClass,
		Contact: in.BorrowerContact,
	}, issueDate, dueDate)
	if err != nil {
		return nil, err
	}

	slog.Info("book issued",
		slog.Int64("book_id", bookID),
		slog.Int64("loan_id", loan.ID),
		slog.String("due_date", loan.DueDate))
	s.emit("loan.issued", map[string]any{"loan_id": loan.ID, "book_id": bookID})
	return loan, nil
}

// ReturnBook closes an open loan and puts the copy back on the shelf.
// Already-returned and unknown loans both report not found.
func (s *Service) ReturnBook(ctx context.Context, loanID int64) (*models.Loan, error) {
	loan, err := s.ledger.ReturnLoan(ctx, loanID, s.now().Format(DateLayout))
	if err != nil {
		return nil, err
	}

	slog.Info("book returned", slog.Int64("loan_id", loanID), slog.Int64("book_id", loan.BookID))
	s.emit("loan.returned", map[string]any{"loan_id": loanID, "book_id": loan.BookID})
	return loan, nil
}

// ListLoans returns the loan history, newest issue first.
func (s *Service) ListLoans(ctx context.Context) ([]models.LoanRecord, error) {
	return s.ledger.ListLoans(ctx)
}

func (s *Service) emit(event string, data map[string]any) {
	if s.publish != nil {
		s.publish(event, data)
	}
}
