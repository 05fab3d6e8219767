package profilestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// NewSQLiteStore opens (or creates) profiles.db under dataPath.
func NewSQLiteStore(ctx context.Context, dataPath string) (*SQLStore, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "profiles.db")
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: SQLite serializes writers.
	db.SetMaxOpenConns(1)

	store, err := newSQLStore(ctx, db, sqliteDialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
