// Package db owns the catalog database connection and its schema
// lifecycle. Stores live in internal/seg/storage; this package only
// opens the database and runs migrations.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the catalog sqlite database.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the catalog database at path.
// Schema setup is a separate step: call MigrateUp before using any
// store. Use ":memory:" for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	// Concurrent site jobs share one writer; WAL keeps readers
	// unblocked and busy_timeout serialises the writers.
	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return &DB{db}, nil
}
