// Package index keeps a sqlite index of the corpus: lesson metadata,
// sections, snippets, link edges and a full-text table. The index is a
// cache over the markdown files, rebuilt incrementally by comparing
// modification times and checksums; deleting the database file is always
// safe.
package index

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Store wraps the sqlite database. SQLite allows one writer at a time,
// so the pool is capped at a single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the index database at path. Pragmas and schema
// are applied idempotently; an index created by an older schema version
// is dropped and rebuilt rather than migrated, since the files remain
// the source of truth.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		if err := dropAll(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func dropAll(db *sql.DB) error {
	tables := []string{"lessons_fts", "links", "snippets", "sections", "lessons"}
	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, rolling back on error.
func (s *Store) WithTx(fn func(*Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

// Clear removes every indexed row but keeps the schema.
func (s *Store) Clear() error {
	return s.WithTx(func(tx *Tx) error {
		for _, stmt := range []string{
			"DELETE FROM links",
			"DELETE FROM snippets",
			"DELETE FROM sections",
			"DELETE FROM lessons",
			"DELETE FROM lessons_fts",
		} {
			if _, err := tx.tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to clear index: %w", err)
			}
		}
		return nil
	})
}

// Stats counts indexed rows per table.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM lessons", &stats.Lessons},
		{"SELECT COUNT(*) FROM sections", &stats.Sections},
		{"SELECT COUNT(*) FROM snippets", &stats.Snippets},
		{"SELECT COUNT(*) FROM links", &stats.Links},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return stats, nil
}
