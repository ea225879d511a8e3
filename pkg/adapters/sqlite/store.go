// Package sqlite implements ports.PreferenceStore on a SQLite database through
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mathview/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store keeps one row per profile.
type Store struct {
	db *sql.DB
}

// New opens or creates the database at path.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS preferences (
		profile    TEXT PRIMARY KEY,
		blob       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// Save upserts the blob of profile.
func (s *Store) Save(ctx context.Context, profile, blob string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (profile, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		profile, blob, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save profile %s: %w", profile, err)
	}
	return nil
}

// Load returns the blob of profile.
func (s *Store) Load(ctx context.Context, profile string) (string, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM preferences WHERE profile = ?`, profile).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load profile %s: %w", profile, err)
	}
	return blob, nil
}

// Delete removes the row of profile.
func (s *Store) Delete(ctx context.Context, profile string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("delete profile %s: %w", profile, err)
	}
	return nil
}

// List returns the saved profiles in name order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile FROM preferences ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
