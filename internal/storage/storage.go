// Package storage persists visitor preferences in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	visitor_id TEXT NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (visitor_id, name)
)`

// DB is the application database.
type DB struct {
	sql *sql.DB
	log *logger.Logger
}

// Open opens (and creates if needed) the database at path.
func Open(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps writes serialized and makes :memory: usable
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	log.Info("Database initialized", "path", path)
	return &DB{sql: db, log: log}, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Preferences returns the preference store.
func (d *DB) Preferences() *PreferenceStore {
	return &PreferenceStore{db: d.sql, log: d.log}
}

// PreferenceStore keeps named values per visitor.
type PreferenceStore struct {
	db  *sql.DB
	log *logger.Logger
}

// Get returns the stored value; ok is false when nothing is stored.
func (s *PreferenceStore) Get(ctx context.Context, visitorID, name string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE visitor_id = ? AND name = ?`,
		visitorID, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", name, err)
	}
	return value, true, nil
}

// Set stores value, replacing any previous one.
func (s *PreferenceStore) Set(ctx context.Context, visitorID, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (visitor_id, name, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (visitor_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, visitorID, name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set preference %s: %w", name, err)
	}
	return nil
}

// Cleanup removes preferences that have not been written since cutoff.
func (s *PreferenceStore) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup preferences: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		s.log.Info("Privacy cleanup: removed stale preferences", "removed", n)
	}
	return n, nil
}

// Slot binds one visitor's named preference.
func (s *PreferenceStore) Slot(visitorID, name string) *Slot {
	return &Slot{store: s, visitorID: visitorID, name: name}
}

// Slot is a single durable key-value entry.
type Slot struct {
	store     *PreferenceStore
	visitorID string
	name      string
}

func (s *Slot) Get(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.visitorID, s.name)
}

func (s *Slot) Set(ctx context.Context, value string) error {
	return s.store.Set(ctx, s.visitorID, s.name, value)
}
