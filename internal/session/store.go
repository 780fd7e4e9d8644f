// Package session persists the client's authentication snapshot across
// restarts: credential, username and the dark-mode preference, as opaque
// key-value pairs in a local sqlite file. Missing or corrupt entries are
// treated as absent; nothing here panics on first run.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Azaziop/systeme-detect-fraude/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyCredential = "credential"
	keyUsername   = "username"
	keyDarkMode   = "dark_mode"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping state database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists the active session snapshot.
func (s *Store) Save(ctx context.Context, sess core.Session) error {
	if err := s.set(ctx, keyCredential, sess.Credential); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if err := s.set(ctx, keyUsername, sess.Username); err != nil {
		return fmt.Errorf("save username: %w", err)
	}
	return nil
}

// Load returns the persisted session, if any. Partial entries (credential
// without username or vice versa) count as absent.
func (s *Store) Load(ctx context.Context) (core.Session, bool) {
	credential, ok := s.get(ctx, keyCredential)
	if !ok || credential == "" {
		return core.Session{}, false
	}
	username, ok := s.get(ctx, keyUsername)
	if !ok || username == "" {
		return core.Session{}, false
	}
	return core.Session{Username: username, Credential: credential}, true
}

// Clear removes the persisted session snapshot. The dark-mode preference
// survives logout.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM client_state WHERE key IN (?, ?)`, keyCredential, keyUsername)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SetDarkMode persists the theme preference.
func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	return s.set(ctx, keyDarkMode, strconv.FormatBool(dark))
}

// DarkMode returns the persisted theme preference, defaulting to light.
func (s *Store) DarkMode(ctx context.Context) bool {
	raw, ok := s.get(ctx, keyDarkMode)
	if !ok {
		return false
	}
	dark, err := strconv.ParseBool(raw)
	if err != nil {
		// Corrupt entry, treat as unset.
		return false
	}
	return dark
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		slog.WarnContext(ctx, "State read failed, treating as absent", "key", key, "error", err)
		return "", false
	}
	return value, true
}
