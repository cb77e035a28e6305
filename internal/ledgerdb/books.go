package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/starford/liber/internal/apperr"
	"github.com/starford/liber/internal/models"
)

// translateISBN maps the UNIQUE constraint on books.isbn to the typed
// error. The constraint is the final arbiter of uniqueness; there is
// deliberately no application-level pre-check, which would be racy.
func translateISBN(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return apperr.ErrDuplicateISBN
	}
	return err
}

// CreateBook persists a new book. The ID field is populated on return.
func (db *DB) CreateBook(ctx context.Context, b *models.Book) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO books (title, author, isbn, copies, available) VALUES (?, ?, ?, ?, ?)`,
		b.Title, b.Author, b.ISBN, b.Copies, b.Available)
	if err != nil {
		if terr := translateISBN(err); terr != err {
			return terr
		}
		return fmt.Errorf("ledgerdb: insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ledgerdb: last insert id: %w", err)
	}
	b.ID = id
	return nil
}

// GetBook retrieves a single book by id.
func (db *DB) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	b, err := scanBook(db.conn.QueryRowContext(ctx,
		`SELECT id, title, author, isbn, copies, available FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: get book: %w", err)
	}
	return b, nil
}

// UpdateBook rewrites a book row in place. The availability adjustment
// (available + newCopies - oldCopies) and its lower bound are evaluated
// against the current row inside the UPDATE itself, so a concurrent
// issue or return on the same book cannot cause a lost update.
func (db *DB) UpdateBook(ctx context.Context, id int64, title, author string, isbn *string, copies int) (*models.Book, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, isbn = ?, available = available + ? - copies, copies = ?
		WHERE id = ? AND available + ? - copies >= 0
	`, title, author, isbn, copies, copies, id, copies)
	if err != nil {
		if terr := translateISBN(err); terr != err {
			return nil, terr
		}
		return nil, fmt.Errorf("ledgerdb: update book: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: rows affected: %w", err)
	}
	if n == 0 {
		// Row either does not exist or the copy reduction would drop
		// available below zero. Distinguish within the same transaction.
		var one int
		switch scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, id).Scan(&one); {
		case errors.Is(scanErr, sql.ErrNoRows):
			return nil, apperr.ErrNotFound
		case scanErr != nil:
			return nil, fmt.Errorf("ledgerdb: check book: %w", scanErr)
		default:
			return nil, apperr.ErrInvariant
		}
	}

	b, err := scanBook(tx.QueryRowContext(ctx,
		`SELECT id, title, author, isbn, copies, available FROM books WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: reread book: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledgerdb: commit: %w", err)
	}
	return b, nil
}

// DeleteBook removes a book unconditionally. Deleting an absent book is
// a no-op. Open loans referencing the book are left in place.
func (db *DB) DeleteBook(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ledgerdb: delete book: %w", err)
	}
	return nil
}

// ListBooks returns the catalog ordered by title. A non-empty search
// term restricts the result to books whose title, author, or ISBN
// contains the term as a substring; the same ordering applies so the
// result is deterministic.
func (db *DB) ListBooks(ctx context.Context, search string) ([]models.Book, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if search == "" {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT id, title, author, isbn, copies, available FROM books ORDER BY title, id`)
	} else {
		like := "%" + search + "%"
		rows, err = db.conn.QueryContext(ctx, `
			SELECT id, title, author, isbn, copies, available
			FROM books
			WHERE title LIKE ? OR author LIKE ? OR ifnull(isbn, '') LIKE ?
			ORDER BY title, id
		`, like, like, like)
	}
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: list books: %w", err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	var (
		b    models.Book
		isbn sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &isbn, &b.Copies, &b.Available); err != nil {
		return nil, err
	}
	if isbn.Valid {
		b.ISBN = &isbn.String
	}
	return &b, nil
}
