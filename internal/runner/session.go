// Package runner executes the sql blocks of a lesson against a scratch
// database, in document order, so every example's output can be checked
// without leaving the terminal. Each lesson gets a fresh session; the
// sample tables a lesson creates exist only for its own run.
package runner

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Result is the tabular outcome of one query.
type Result struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Truncated bool       `json:"truncated,omitempty"`
}

// Session is one database session examples run against. Statements see
// the effects of earlier statements in the same session.
type Session interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, stmt string) (int64, error)

	// Query runs a statement and collects up to limit rows; limit <= 0
	// means no cap. NULL renders as the string NULL.
	Query(ctx context.Context, stmt string, limit int) (*Result, error)

	Close() error
}

// sqliteSession runs against an in-memory SQLite database. The pool is
// pinned to one connection; a second connection would see a different
// empty in-memory database.
type sqliteSession struct {
	db *sql.DB
}

// NewSQLiteSession opens a fresh in-memory session.
func NewSQLiteSession() (Session, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragma: %w", err)
	}
	return &sqliteSession{db: db}, nil
}

func (s *sqliteSession) Exec(ctx context.Context, stmt string) (int64, error) {
	result, err := s.db.ExecContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func (s *sqliteSession) Query(ctx context.Context, stmt string, limit int) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		if limit > 0 && len(result.Rows) >= limit {
			result.Truncated = true
			break
		}
		values := make([]sql.NullString, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sqliteSession) Close() error {
	return s.db.Close()
}
