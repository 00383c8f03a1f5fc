package store

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the shared SQLite handle used by both persistent stores.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", path).Msg("sqlite store opened")
	return d, nil
}

func (d *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trend_counts (
			date    TEXT NOT NULL,
			keyword TEXT NOT NULL,
			hour    INTEGER NOT NULL,
			count   INTEGER NOT NULL,
			PRIMARY KEY (date, keyword, hour)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trend_keyword ON trend_counts(keyword, date)`,

		`CREATE TABLE IF NOT EXISTS trend_cycles (
			date     TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			PRIMARY KEY (date, cycle_id)
		)`,

		`CREATE TABLE IF NOT EXISTS associations (
			keyword      TEXT NOT NULL,
			instrument   TEXT NOT NULL,
			source       TEXT NOT NULL,
			weight       REAL NOT NULL,
			last_updated TEXT NOT NULL,
			PRIMARY KEY (keyword, instrument, source)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assoc_keyword ON associations(keyword)`,

		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// TrendStore returns the trend history store backed by this database.
func (d *DB) TrendStore() *TrendStore {
	return &TrendStore{db: d.db}
}

// AssociationStore returns the association store backed by this database.
func (d *DB) AssociationStore() *AssociationStore {
	return &AssociationStore{db: d.db}
}

func (d *DB) Close() error {
	log.Info().Msg("closing sqlite store")
	return d.db.Close()
}
