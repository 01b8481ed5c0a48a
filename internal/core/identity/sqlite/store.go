// Package sqlite provides a SQLite-backed identity store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/modelhub/internal/core/identity"
	"github.com/louisbranch/modelhub/internal/core/identity/sqlite/migrations"
	"github.com/louisbranch/modelhub/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/modelhub/internal/platform/timeouts"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// User is one row of the users table.
type User struct {
	PrincipalID string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store persists display names in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection would otherwise see its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.StorePing)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutUser inserts or renames one principal.
func (s *Store) PutUser(ctx context.Context, principalID, displayName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return fmt.Errorf("principal id is required")
	}
	now := s.now().UTC().UnixMilli()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (principal_id, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(principal_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   updated_at = excluded.updated_at`,
		principalID, displayName, now, now,
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser returns one principal or identity.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, principalID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return User{}, fmt.Errorf("storage is not configured")
	}
	var (
		user               User
		createdAt, updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT principal_id, display_name, created_at, updated_at FROM users WHERE principal_id = ?`,
		strings.TrimSpace(principalID),
	).Scan(&user.PrincipalID, &user.DisplayName, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, identity.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	user.UpdatedAt = time.UnixMilli(updated).UTC()
	return user, nil
}

// LookupDisplayName implements identity.Store.
func (s *Store) LookupDisplayName(ctx context.Context, principalID string) (string, error) {
	user, err := s.GetUser(ctx, principalID)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

var _ identity.Store = (*Store)(nil)
