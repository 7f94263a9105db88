// Package cache persists built units keyed by input fingerprint, backed by
// SQLite. A type whose input has not changed since the last build is served
// from here instead of being re-derived.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/opforge/opforge/internal/model"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed build cache. Pass an empty data directory for an
// in-memory cache.
type Store struct {
	db *sqlx.DB
}

// NewStore opens (or creates) the cache database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "opforge.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate cache database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// unitRow maps 1:1 to the units table.
type unitRow struct {
	TypeName    string    `db:"type_name"`
	Fingerprint string    `db:"fingerprint"`
	UnitJSON    string    `db:"unit_json"`
	BuiltAt     time.Time `db:"built_at"`
}

// Lookup returns the cached unit for a type iff the stored input fingerprint
// matches. It implements engine.UnitCache.
func (s *Store) Lookup(ctx context.Context, typeName, inputFingerprint string) (*model.GeneratedUnit, bool, error) {
	var row unitRow
	err := s.db.GetContext(ctx, &row,
		`SELECT type_name, fingerprint, unit_json, built_at FROM units WHERE type_name = ?`, typeName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if row.Fingerprint != inputFingerprint {
		return nil, false, nil
	}

	var unit model.GeneratedUnit
	if err := json.Unmarshal([]byte(row.UnitJSON), &unit); err != nil {
		return nil, false, fmt.Errorf("decode cached unit %s: %w", typeName, err)
	}
	return &unit, true, nil
}

// Store upserts the unit for a type under its input fingerprint.
func (s *Store) Store(ctx context.Context, typeName, inputFingerprint string, unit *model.GeneratedUnit) error {
	data, err := json.Marshal(unit)
	if err != nil {
		return fmt.Errorf("encode unit %s: %w", typeName, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO units (type_name, fingerprint, unit_json, built_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(type_name) DO UPDATE SET
		   fingerprint = excluded.fingerprint,
		   unit_json = excluded.unit_json,
		   built_at = excluded.built_at`,
		typeName, inputFingerprint, string(data))
	return err
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries  int        `json:"entries"`
	OldestAt *time.Time `json:"oldest_at,omitempty"`
	NewestAt *time.Time `json:"newest_at,omitempty"`
}

// GetStats returns entry count and build-time range.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.GetContext(ctx, &st.Entries, `SELECT COUNT(*) FROM units`); err != nil {
		return Stats{}, err
	}
	if st.Entries == 0 {
		return st, nil
	}
	var oldest, newest time.Time
	// MIN/MAX strip the column's DATETIME decltype, so the driver would hand
	// back a string that cannot scan into time.Time; ORDER BY keeps it.
	if err := s.db.GetContext(ctx, &oldest, `SELECT built_at FROM units ORDER BY built_at ASC LIMIT 1`); err != nil {
		return Stats{}, err
	}
	if err := s.db.GetContext(ctx, &newest, `SELECT built_at FROM units ORDER BY built_at DESC LIMIT 1`); err != nil {
		return Stats{}, err
	}
	st.OldestAt, st.NewestAt = &oldest, &newest
	return st, nil
}

// Clear drops every cached unit.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM units`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetSetting reads a key-value setting.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting upserts a key-value setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
