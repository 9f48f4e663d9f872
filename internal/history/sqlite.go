package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timestamps are stored fixed-width in UTC so they order lexically
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore records runs in a local SQLite file.
type SQLiteStore struct {
	conn   *sql.DB
	dbPath string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// one writer; WAL lets readers proceed alongside it
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &SQLiteStore{conn: conn, dbPath: path}
	if err := s.initializeSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initializeSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sort_runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			column_name TEXT NOT NULL,
			format TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			parsed INTEGER NOT NULL DEFAULT 0,
			fallback INTEGER NOT NULL DEFAULT 0,
			short_rows INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sort_runs_created_at ON sort_runs(created_at DESC);
	`
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	query := `
		INSERT INTO sort_runs
			(id, source, column_name, format, row_count, parsed, fallback, short_rows, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.ExecContext(ctx, query,
		run.ID.String(),
		run.Source,
		run.Column,
		run.Format,
		run.Rows,
		run.Parsed,
		run.Fallback,
		run.ShortRows,
		string(run.Status),
		run.Error,
		run.DurationMS,
		run.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("record sort run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, source, column_name, format, row_count, parsed, fallback, short_rows,
			status, error, duration_ms, created_at
		FROM sort_runs ORDER BY created_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sort runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run       Run
			id        string
			status    string
			createdAt string
		)
		if err := rows.Scan(&id, &run.Source, &run.Column, &run.Format, &run.Rows, &run.Parsed,
			&run.Fallback, &run.ShortRows, &status, &run.Error, &run.DurationMS, &createdAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		run.Status = Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Prune relies on the fixed-width UTC timestamp format sorting as text.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM sort_runs WHERE created_at < ?`,
		before.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("prune sort runs: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
