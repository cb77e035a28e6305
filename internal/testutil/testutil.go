// Package testutil provides shared test helpers for setting up ledger databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/liber/internal/ledgerdb"
)

// TestDB creates a temporary SQLite ledger that is automatically cleaned up.
func TestDB(t *testing.T) *ledgerdb.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "liber-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := ledgerdb.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
