package core

// scheduler.go runs background maintenance for the server.
//
// Currently that is history retention: runs older than the configured
// retention are deleted from the history store, once on start and then on
// every interval. Failures are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartHistoryPruner blocks until ctx is cancelled, pruning history every
// interval. It returns at once when there is no store, or when retention
// or interval is not positive.
func (s *Service) StartHistoryPruner(ctx context.Context, retention, interval time.Duration) {
	if s.history == nil || retention <= 0 || interval <= 0 {
		return
	}

	slog.Info("history pruner started", "retention", retention, "interval", interval)

	s.pruneHistory(ctx, retention)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.pruneHistory(ctx, retention)
		}
	}
}

// pruneHistory performs one retention pass and returns the number of runs
// removed.
func (s *Service) pruneHistory(ctx context.Context, retention time.Duration) int64 {
	start := s.now()
	cutoff := start.Add(-retention)

	removed, err := s.history.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return 0
	}

	slog.Info("pruned sort history",
		"runs_removed", removed,
		"cutoff", cutoff,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return removed
}
