// Package history records sort runs so operators can see what was sorted,
// by which column, and how many call numbers fell back to raw ordering.
//
// Three backends share the Store interface:
//
//   - MemoryStore: bounded in-process buffer, the default
//   - PostgresStore: sort_runs table behind a pgx connection pool
//   - SQLiteStore: single-file database for standalone installs and the CLI
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/locsort/internal/config"
)

// Status is the outcome of one sort run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded sort.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Column     string    `json:"column"`
	Format     string    `json:"format"`
	Rows       int       `json:"rows"`
	Parsed     int       `json:"parsed"`
	Fallback   int       `json:"fallback"`
	ShortRows  int       `json:"short_rows"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists runs. Recent returns the newest runs first; a limit of
// zero or less means no limit. Prune deletes runs created before the
// cutoff and reports how many were removed.
type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(cfg.Capacity), nil
	case "postgres":
		return OpenPostgres(ctx, cfg)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown history backend: %q", cfg.Backend)
	}
}
