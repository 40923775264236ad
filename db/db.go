// Package db composes parameterized SQL statements against an abstract
// storage executor. Builders are transient, single-use objects: bind a
// table, accumulate fields and conditions, then execute.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Executor runs parameterized statements. *sql.DB satisfies it; the
// builders never assume a specific engine beyond placeholder binding.
// Access is serialized by database/sql itself.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Result is the outcome of a mutation statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Open creates a SQLite connection with the pragmas the demo and tests
// rely on.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	return conn, nil
}

// Raw executes an arbitrary statement. It bypasses coercion and any
// placeholder discipline the caller does not supply; callers own
// injection safety on this path.
func Raw(ctx context.Context, exec Executor, query string, args ...any) (Result, error) {
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("exec raw: %w", err)
	}
	return resultOf(res)
}

func resultOf(res sql.Result) (Result, error) {
	id, err := res.LastInsertId()
	if err != nil {
		id = 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("rows affected: %w", err)
	}
	return Result{LastInsertID: id, RowsAffected: n}, nil
}
