package ledgerdb

import (
	"context"

	"github.com/starford/liber/internal/models"
)

// Ledger defines the store operations the service layer depends on.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type Ledger interface {
	CreateBook(ctx context.Context, b *models.Book) error
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	UpdateBook(ctx context.Context, id int64, title, author string, isbn *string, copies int) (*models.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context, search string) ([]models.Book, error)
	IssueBook(ctx context.Context, bookID int64, borrower models.Borrower, issueDate, dueDate string) (*models.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64, returnDate string) (*models.Loan, error)
	ListLoans(ctx context.Context) ([]models.LoanRecord, error)
	Close() error
}

// Verify *DB satisfies Ledger at compile time.
var _ Ledger = (*DB)(nil)
