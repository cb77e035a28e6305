package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/liber/internal/apperr"
	"github.com/starford/liber/internal/models"
)

// IssueBook lends one copy of a book within a single transaction:
// the borrower is looked up (or created) by exact (name, contact)
// match, the availability decrement is applied conditionally, and the
// loan row is inserted. Either all three commit or none do.
//
// The decrement carries its own "available >= 1" guard so availability
// is re-evaluated under the transaction, not from a stale read: when
// two callers race for the last copy, exactly one update sticks.
func (db *DB) IssueBook(ctx context.Context, bookID int64, borrower models.Borrower, issueDate, dueDate string) (*models.Loan, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE books SET available = available - 1 WHERE id = ? AND available >= 1`, bookID)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: decrement available: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: rows affected: %w", err)
	}
	if n == 0 {
		var one int
		switch scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, bookID).Scan(&one); {
		case errors.Is(scanErr, sql.ErrNoRows):
			return nil, apperr.ErrNotFound
		case scanErr != nil:
			return nil, fmt.Errorf("ledgerdb: check book: %w", scanErr)
		default:
			return nil, apperr.ErrNoCopies
		}
	}

	borrowerID, err := lookupOrCreateBorrower(ctx, tx, borrower)
	if err != nil {
		return nil, err
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO issues (book_id, borrower_id, issue_date, due_date) VALUES (?, ?, ?, ?)`,
		bookID, borrowerID, issueDate, dueDate)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: insert loan: %w", err)
	}
	loanID, err := ins.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledgerdb: commit: %w", err)
	}
	return &models.Loan{
		ID:         loanID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
	}, nil
}

// lookupOrCreateBorrower resolves the borrower inside the issue
// transaction. Matching is raw equality on (name, contact), no
// normalization, same as the identity rule the schema indexes.
func lookupOrCreateBorrower(ctx context.Context, tx *sql.Tx, b models.Borrower) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM borrowers WHERE name = ? AND contact = ?`, b.Name, b.Contact).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("ledgerdb: lookup borrower: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO borrowers (name, class, contact) VALUES (?, ?, ?)`, b.Name, b.Class, b.Contact)
	if err != nil {
		return 0, fmt.Errorf("ledgerdb: insert borrower: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledgerdb: last insert id: %w", err)
	}
	return id, nil
}

// ReturnLoan closes an open loan and restores the book's availability
// in one transaction. Closing is a conditional update on
// "return_date IS NULL", so a second return of the same loan observes
// zero affected rows and reports not found, exactly like a return of a
// loan that never existed.
func (db *DB) ReturnLoan(ctx context.Context, loanID int64, returnDate string) (*models.Loan, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE issues SET return_date = ? WHERE id = ? AND return_date IS NULL`, returnDate, loanID)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: close loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}

	var loan models.Loan
	var ret sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT id, book_id, borrower_id, issue_date, due_date, return_date FROM issues WHERE id = ?`,
		loanID).Scan(&loan.ID, &loan.BookID, &loan.BorrowerID, &loan.IssueDate, &loan.DueDate, &ret)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: reread loan: %w", err)
	}
	if ret.Valid {
		loan.ReturnDate = &ret.String
	}

	// The book may have been deleted while the loan was open; the
	// increment is then a no-op, matching the documented deletion gap.
	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET available = available + 1 WHERE id = ?`, loan.BookID); err != nil {
		return nil, fmt.Errorf("ledgerdb: increment available: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledgerdb: commit: %w", err)
	}
	return &loan, nil
}

// ListLoans returns the full loan history, newest issue first. Books
// and borrowers are joined loosely so loans whose book was deleted
// still appear (with an empty title).
func (db *DB) ListLoans(ctx context.Context) ([]models.LoanRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT issues.id, ifnull(books.title, ''), ifnull(borrowers.name, ''), ifnull(borrowers.class, ''),
		       issues.issue_date, issues.due_date, issues.return_date
		FROM issues
		LEFT JOIN books ON books.id = issues.book_id
		LEFT JOIN borrowers ON borrowers.id = issues.borrower_id
		ORDER BY issues.issue_date DESC, issues.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: list loans: %w", err)
	}
	defer rows.Close()

	var out []models.LoanRecord
	for rows.Next() {
		var (
			r   models.LoanRecord
			ret sql.NullString
		)
		if err := rows.Scan(&r.LoanID, &r.BookTitle, &r.BorrowerName, &r.BorrowerClass,
			&r.IssueDate, &r.DueDate, &ret); err != nil {
			return nil, err
		}
		if ret.Valid {
			r.ReturnDate = &ret.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
