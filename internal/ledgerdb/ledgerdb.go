// Package ledgerdb provides the SQLite-backed lending ledger store.
// All mutating operations run as single transactions so that loan
// records and book availability can never drift apart.
package ledgerdb

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	title     TEXT NOT NULL,
	author    TEXT NOT NULL,
	isbn      TEXT UNIQUE,
	copies    INTEGER NOT NULL DEFAULT 1,
	available INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS borrowers (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL,
	class   TEXT NOT NULL DEFAULT '',
	contact TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS issues (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id     INTEGER NOT NULL,
	borrower_id INTEGER NOT NULL,
	issue_date  TEXT NOT NULL,
	due_date    TEXT NOT NULL,
	return_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_issues_book_id ON issues(book_id);
CREATE INDEX IF NOT EXISTS idx_issues_borrower_id ON issues(borrower_id);
CREATE INDEX IF NOT EXISTS idx_borrowers_identity ON borrowers(name, contact);
`

// DB wraps a sql.DB with ledger-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("ledgerdb: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledgerdb: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledgerdb: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
