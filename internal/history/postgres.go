package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/locsort/internal/config"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sort_runs (
		id          UUID PRIMARY KEY,
		source      TEXT NOT NULL,
		column_name TEXT NOT NULL,
		format      TEXT NOT NULL DEFAULT '',
		row_count   INTEGER NOT NULL DEFAULT 0,
		parsed      INTEGER NOT NULL DEFAULT 0,
		fallback    INTEGER NOT NULL DEFAULT 0,
		short_rows  INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sort_runs_created_at ON sort_runs (created_at DESC)`,
}

// PostgresStore records runs in the sort_runs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects using cfg's URL and pool limits, verifies the
// connection and creates the schema if needed.
func OpenPostgres(ctx context.Context, cfg config.HistoryConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgresStore(pool)
	if err := s.initializeSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

// NewPostgresStore wraps an existing pool. The schema must already exist.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) initializeSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, run Run) error {
	query := `INSERT INTO sort_runs
		(id, source, column_name, format, row_count, parsed, fallback, short_rows, status, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
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
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record sort run: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id::text, source, column_name, format, row_count, parsed, fallback, short_rows,
		status, error, duration_ms, created_at
		FROM sort_runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sort runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run    Run
			id     string
			status string
		)
		if err := rows.Scan(&id, &run.Source, &run.Column, &run.Format, &run.Rows, &run.Parsed,
			&run.Fallback, &run.ShortRows, &status, &run.Error, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.Status = Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sort_runs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune sort runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
