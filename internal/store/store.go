// Package store persists named blobs (settings, category list) in a local
// SQLite database under the user's state directory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a blob name with no stored value.
var ErrNotFound = errors.New("blob not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS blobs (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Store is a named-blob store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the blob database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("ensure state dir for %q: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open blob store %q: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply blob store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored blob for name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", name, err)
	}
	return data, nil
}

// Put stores data under name, replacing any prior value.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (name, data, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", name, err)
	}
	return nil
}

// Delete removes a stored blob; deleting an absent name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

// DefaultPath selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "voxpad", "voxpad.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "voxpad", "voxpad.db"), nil
}
