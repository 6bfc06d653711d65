package installed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS installed_versions (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	dsn string
}

// NewSQLiteStore creates a store backed by the database file at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		dsn: "file:" + filepath.ToSlash(filepath.Clean(path)) + "?_pragma=busy_timeout(3000)",
	}
}

// Read returns the value stored under key.
func (s *SQLiteStore) Read(ctx context.Context, key string) (string, error) {
	db, err := s.openDB(ctx)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = db.Close()
	}()

	var value string

	err = db.QueryRowContext(ctx, `SELECT value FROM installed_versions WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("query installed version: %w", err)
	}

	return value, nil
}

// Write stores value under key.
func (s *SQLiteStore) Write(ctx context.Context, key, value string) error {
	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	_, err = db.ExecContext(ctx, `
		INSERT INTO installed_versions (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store installed version: %w", err)
	}

	return nil
}

// openDB opens the database and makes sure the table exists.
func (s *SQLiteStore) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open installed version db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err = db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare installed version db: %w", err)
	}

	return db, nil
}
