// Package sqlite provides a SQLite-backed encounter store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/battlegrid/internal/encounter"
	sqlitemigrate "github.com/louisbranch/battlegrid/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/battlegrid/internal/storage"
	"github.com/louisbranch/battlegrid/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists encounters in SQLite. Listing columns are kept next to the
// JSON payload so List never decodes whole encounters.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite encounter store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts or replaces one encounter.
func (s *Store) Put(ctx context.Context, saved encounter.SavedEncounter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(saved.ID) == "" {
		return fmt.Errorf("encounter id is required")
	}

	payload, err := encounter.Encode(saved)
	if err != nil {
		return err
	}
	meta := saved.Metadata()
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO encounters (id, name, description, entity_count, saved_at, version, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   entity_count = excluded.entity_count,
		   saved_at = excluded.saved_at,
		   version = excluded.version,
		   payload = excluded.payload`,
		meta.ID,
		meta.Name,
		meta.Description,
		meta.EntityCount,
		meta.Timestamp,
		saved.Version,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("put encounter: %w", err)
	}
	return nil
}

// Get returns one encounter by id.
func (s *Store) Get(ctx context.Context, id string) (encounter.SavedEncounter, error) {
	if err := ctx.Err(); err != nil {
		return encounter.SavedEncounter{}, err
	}
	if s == nil || s.sqlDB == nil {
		return encounter.SavedEncounter{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return encounter.SavedEncounter{}, fmt.Errorf("encounter id is required")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM encounters WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return encounter.SavedEncounter{}, storage.ErrNotFound
		}
		return encounter.SavedEncounter{}, fmt.Errorf("get encounter: %w", err)
	}
	return encounter.Decode([]byte(payload))
}

// List returns encounter summaries, newest first.
func (s *Store) List(ctx context.Context) ([]encounter.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, description, entity_count, saved_at
		   FROM encounters
		  ORDER BY saved_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var list []encounter.Metadata
	for rows.Next() {
		var meta encounter.Metadata
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.EntityCount, &meta.Timestamp); err != nil {
			return nil, fmt.Errorf("list encounters: %w", err)
		}
		list = append(list, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	return list, nil
}

// Delete removes one encounter by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM encounters WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Stats counts the stored encounters and their payload bytes.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return storage.Stats{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Stats{}, fmt.Errorf("storage is not configured")
	}

	var stats storage.Stats
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(CAST(payload AS BLOB))), 0) FROM encounters`,
	).Scan(&stats.Count, &stats.Bytes)
	if err != nil {
		return storage.Stats{}, fmt.Errorf("encounter stats: %w", err)
	}
	return stats, nil
}

// Clear deletes every encounter.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM encounters`); err != nil {
		return fmt.Errorf("clear encounters: %w", err)
	}
	return nil
}

var _ storage.EncounterStore = (*Store)(nil)
