package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/locsort/internal/callnumber"
	"github.com/JonMunkholm/locsort/internal/config"
	"github.com/JonMunkholm/locsort/internal/history"
	"github.com/JonMunkholm/locsort/internal/logging"
	"github.com/JonMunkholm/locsort/internal/table"
	"github.com/JonMunkholm/locsort/internal/tableio"
)

// historyWriteTimeout bounds recording a run after the sort itself is done.
const historyWriteTimeout = 5 * time.Second

// Service runs sort jobs: load a table, order it by a call-number column,
// write it back out and record the run.
type Service struct {
	keyer   *callnumber.Keyer
	sorter  *table.Sorter
	limiter *JobLimiter
	history history.Store

	defaultColumn string
	jobTimeout    time.Duration
	historyLimit  int

	now func() time.Time
}

// NewService builds a Service from configuration. store may be nil, in
// which case runs are not recorded.
func NewService(store history.Store, cfg *config.Config) *Service {
	keyer := callnumber.NewKeyer()
	return &Service{
		keyer:         keyer,
		sorter:        table.NewSorter(keyer),
		limiter:       NewJobLimiter(cfg.Sort.MaxConcurrent, cfg.Sort.MaxWaitTime),
		history:       store,
		defaultColumn: cfg.Sort.DefaultColumn,
		jobTimeout:    cfg.Sort.Timeout,
		historyLimit:  cfg.History.ListLimit,
		now:           time.Now,
	}
}

// SortRequest describes one sort job.
type SortRequest struct {
	// Source names the input for format detection, logs and history.
	Source string
	// Column is the header to sort by; empty selects the configured default.
	Column string
	// Sheet selects a worksheet for spreadsheet sources.
	Sheet string
	// Format overrides detection from Source.
	Format tableio.Format
	// OutputFormat defaults to CSV.
	OutputFormat tableio.Format
}

// SortResult reports a finished job.
type SortResult struct {
	RunID    uuid.UUID     `json:"run_id"`
	Column   string        `json:"column"`
	Stats    table.Stats   `json:"stats"`
	Duration time.Duration `json:"duration"`
}

// SortStream reads a table from r, sorts it and writes the result to w.
// Nothing is written to w unless the sort succeeds.
func (s *Service) SortStream(ctx context.Context, req SortRequest, r io.Reader, w io.Writer) (*SortResult, error) {
	format := req.Format
	if format == "" {
		f, err := tableio.FormatFromName(req.Source)
		if err != nil {
			return nil, err
		}
		format = f
	}

	counter := tableio.NewCountingReader(r, 0)
	load := func() (table.Table, error) {
		return tableio.Read(counter, tableio.ReadOptions{Format: format, Sheet: req.Sheet})
	}
	store := func(t table.Table) error {
		return tableio.Write(w, req.OutputFormat, t)
	}

	res, err := s.run(ctx, req, format, load, store)
	if err == nil {
		logging.FromContext(ctx).Debug("sort input consumed", "source", req.Source, "bytes", counter.BytesRead)
	}
	return res, err
}

// SortFile sorts the table at inPath into outPath. The output format follows
// outPath's extension, and the output file is only created once the sort
// has succeeded.
func (s *Service) SortFile(ctx context.Context, inPath, outPath, column, sheet string) (*SortResult, error) {
	inFormat, err := tableio.FormatFromName(inPath)
	if err != nil {
		return nil, err
	}
	if _, err := tableio.FormatFromName(outPath); err != nil {
		return nil, err
	}

	req := SortRequest{Source: filepath.Base(inPath), Column: column, Sheet: sheet}
	load := func() (table.Table, error) {
		return tableio.ReadFile(inPath, sheet)
	}
	store := func(t table.Table) error {
		return tableio.WriteFile(outPath, t)
	}
	return s.run(ctx, req, inFormat, load, store)
}

// run executes one job under the limiter. Cancellation is checked only
// around loading and storing; keying and sorting run to completion.
func (s *Service) run(ctx context.Context, req SortRequest, format tableio.Format,
	load func() (table.Table, error), store func(table.Table) error) (*SortResult, error) {

	column := req.Column
	if column == "" {
		column = s.defaultColumn
	}

	runID := uuid.New()
	logger := logging.WithFields(ctx,
		"run_id", runID,
		"source", req.Source,
		"column", column,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("sort rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := s.now()
	logger.Info("sort started", "format", format)

	res := &SortResult{RunID: runID, Column: column}
	sortErr := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := load()
		if err != nil {
			return err
		}

		sorted, stats, err := s.sorter.Sort(t, column)
		res.Stats = stats
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		return store(sorted)
	}()
	res.Duration = s.now().Sub(start)

	s.record(ctx, logger, history.Run{
		ID:         runID,
		Source:     req.Source,
		Column:     column,
		Format:     string(format),
		Rows:       res.Stats.Rows,
		Parsed:     res.Stats.Parsed,
		Fallback:   res.Stats.Fallback,
		ShortRows:  res.Stats.ShortRows,
		DurationMS: res.Duration.Milliseconds(),
		CreatedAt:  start,
	}, sortErr)

	if sortErr != nil {
		var cnf *table.ColumnNotFoundError
		if errors.As(sortErr, &cnf) {
			logger.Info("sort column not found", "error", sortErr)
		} else {
			logger.Error("sort failed", "error", sortErr)
		}
		return nil, sortErr
	}

	logger.Info("sort completed",
		"rows", res.Stats.Rows,
		"parsed", res.Stats.Parsed,
		"fallback", res.Stats.Fallback,
		"short_rows", res.Stats.ShortRows,
		"duration", res.Duration,
	)
	return res, nil
}

// record stores a run. Failures are logged and otherwise ignored so that
// history problems never fail a sort.
func (s *Service) record(ctx context.Context, logger *slog.Logger, run history.Run, sortErr error) {
	if s.history == nil {
		return
	}

	run.Status = history.StatusSucceeded
	if sortErr != nil {
		run.Status = history.StatusFailed
		run.Error = sortErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	if err := s.history.Record(ctx, run); err != nil {
		logger.Warn("failed to record sort run", "error", err)
	}
}

// PreviewKeys explains how each raw call number is normalized and keyed.
func (s *Service) PreviewKeys(raw []string) []callnumber.Explanation {
	out := make([]callnumber.Explanation, len(raw))
	for i, r := range raw {
		out[i] = s.keyer.Explain(r)
	}
	return out
}

// History returns recent runs, newest first. A non-positive limit selects
// the configured default.
func (s *Service) History(ctx context.Context, limit int) ([]history.Run, error) {
	if s.history == nil {
		return []history.Run{}, nil
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	runs, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return runs, nil
}

// DefaultColumn returns the column used when a request names none.
func (s *Service) DefaultColumn() string {
	return s.defaultColumn
}

// LimiterStatus reports job slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForJobs blocks until running jobs finish or ctx is done.
func (s *Service) WaitForJobs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
