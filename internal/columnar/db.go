// Package columnar provides the shared embedded-database plumbing used by
// every stage of the pipeline to read and write columnar side files: the
// network cache, the intermediate traversal table, and the trajectory and
// heatmap outputs. It wraps DuckDB (via database/sql) the way the lake
// package wraps it for the data lake: one connection per file, opened and
// closed around a single pass.
package columnar

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB is a thin handle around an embedded DuckDB file used for one stage's
// input or output. It is not safe for concurrent writes from multiple
// goroutines; callers that fan out work must serialize writes through a
// single goroutine (see filter.Writer and trajectory.Sink for the pattern).
type DB struct {
	log  *slog.Logger
	path string
	conn *sql.DB
}

// Open opens (creating if absent) a DuckDB file at path for read/write use.
func Open(log *slog.Logger, path string) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("columnar: open %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("columnar: ping %s: %w", path, err)
	}
	return &DB{log: log, path: path, conn: conn}, nil
}

// OpenMemory opens an in-memory DuckDB instance, useful for tests and for
// stages that stream their output straight to a sink without persisting an
// intermediate file.
func OpenMemory(log *slog.Logger) (*DB, error) {
	return Open(log, ":memory:")
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.conn.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.conn.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.conn.QueryRowContext(ctx, query, args...)
}

func (d *DB) Conn() *sql.DB { return d.conn }

func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	return d.conn.Close()
}

// Exists reports whether the file at path is present on disk, without
// opening it.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
