// Package cache keeps the manifest of downloaded editor builds so repeated
// runs skip the download.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a queried install is not in the manifest.
var ErrNotFound = errors.New("install not found")

// Install records one extracted editor build in the download cache.
type Install struct {
	Version      string
	Platform     string
	Path         string // extracted install directory
	SHA256       string // archive digest as published by the update service
	DownloadedAt time.Time
}

// Store wraps a SQLite database holding the install manifest.
type Store struct {
	db *sql.DB
}

// Open creates or opens the manifest database at the given path with WAL
// mode. Use ":memory:" for in-memory databases in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening install manifest %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the manifest row for (version, platform).
func (s *Store) Put(ctx context.Context, inst *Install) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO installs (version, platform, path, sha256, downloaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		inst.Version, inst.Platform, inst.Path, inst.SHA256, inst.DownloadedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording install %s/%s: %w", inst.Version, inst.Platform, err)
	}
	return nil
}

// Get returns the manifest row for (version, platform), or ErrNotFound.
func (s *Store) Get(ctx context.Context, version, platform string) (*Install, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, platform, path, sha256, downloaded_at
		FROM installs WHERE version = ? AND platform = ?`,
		version, platform,
	)
	return scanInstall(row)
}

// List returns every recorded install, newest first.
func (s *Store) List(ctx context.Context) ([]*Install, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, platform, path, sha256, downloaded_at
		FROM installs ORDER BY downloaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing installs: %w", err)
	}
	defer rows.Close()

	var out []*Install
	for rows.Next() {
		inst, err := scanInstall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Delete removes the manifest row for (version, platform). Deleting a row
// that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, version, platform string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM installs WHERE version = ? AND platform = ?`,
		version, platform,
	)
	if err != nil {
		return fmt.Errorf("deleting install %s/%s: %w", version, platform, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstall(row scanner) (*Install, error) {
	var inst Install
	var downloadedAt int64
	err := row.Scan(&inst.Version, &inst.Platform, &inst.Path, &inst.SHA256, &downloadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning install row: %w", err)
	}
	inst.DownloadedAt = time.Unix(downloadedAt, 0)
	return &inst, nil
}
