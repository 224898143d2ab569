package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/s2_quotes"
	"github.com/wonny/tse-screener/pkg/logger"
)

// QuoteFetcher is the S2 stage
type QuoteFetcher interface {
	Fetch(ctx context.Context, tickers []string, progress s2_quotes.ProgressFunc) s2_quotes.Result
}

// MetricsBuilder is the S3 stage
type MetricsBuilder interface {
	Build(instruments []contracts.Instrument, quotes map[string]contracts.QuoteRecord) []contracts.SnapshotRow
}

// SnapshotSink is the S4 stage
type SnapshotSink interface {
	Write(rows []contracts.SnapshotRow, runDate time.Time) (string, error)
}

// Orchestrator runs S1 → S2 → S3 → S4 strictly in order
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	universe contracts.UniverseLoader
	quotes   QuoteFetcher
	metrics  MetricsBuilder
	writer   SnapshotSink
	archive  contracts.SnapshotArchive // optional

	progress io.Writer
	logger   *logger.Logger
	now      func() time.Time
}

// NewOrchestrator creates a new orchestrator. Progress lines go to progress (stdout in the CLI).
func NewOrchestrator(
	universe contracts.UniverseLoader,
	quotes QuoteFetcher,
	metrics MetricsBuilder,
	writer SnapshotSink,
	progress io.Writer,
	log *logger.Logger,
) *Orchestrator {
	if progress == nil {
		progress = io.Discard
	}
	return &Orchestrator{
		universe: universe,
		quotes:   quotes,
		metrics:  metrics,
		writer:   writer,
		progress: progress,
		logger:   log.Module("pipeline"),
		now:      time.Now,
	}
}

// WithArchive adds the optional database archive
func (o *Orchestrator) WithArchive(archive contracts.SnapshotArchive) *Orchestrator {
	o.archive = archive
	return o
}

// RunConfig holds configuration for one run
type RunConfig struct {
	Segments    []contracts.Segment
	SkipWeekend bool
	Location    *time.Location // exchange time zone
	Date        time.Time      // zero means now
	RunID       string         // empty means a new UUID
}

// RunResult summarizes one run
type RunResult struct {
	RunID         string                  `json:"run_id"`
	Date          time.Time               `json:"date"`
	Skipped       bool                    `json:"skipped"`
	SkipReason    string                  `json:"skip_reason,omitempty"`
	Instruments   int                     `json:"instruments"`
	Resolved      int                     `json:"resolved"`
	FailedBatches int                     `json:"failed_batches"`
	SkipCounts    map[string]int          `json:"skip_counts,omitempty"`
	Rows          int                     `json:"rows"`
	Path          string                  `json:"path,omitempty"`
	Archived      int                     `json:"archived"`
	Stages        []contracts.StageResult `json:"stages"`
	Duration      time.Duration           `json:"duration"`
}

// IsWeekend reports whether t falls on Saturday or Sunday in loc
func IsWeekend(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	switch t.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// Run executes the daily pipeline. Only a universe failure or a write failure
// returns an error; batch and instrument failures shrink the output instead.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	start := o.now()
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	date := cfg.Date
	if date.IsZero() {
		date = start
	}
	date = date.In(loc)

	result := &RunResult{
		RunID: cfg.RunID,
		Date:  date,
	}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	log := o.logger.WithField("run_id", result.RunID)

	if cfg.SkipWeekend && IsWeekend(date, loc) {
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("%s is a weekend", date.Format("2006-01-02 Mon"))
		o.printf("Skipping run: %s\n", result.SkipReason)
		log.WithField("date", date.Format("2006-01-02")).Info("Weekend, run skipped")
		return result, nil
	}

	o.printf("[%s] Fetch start: %s\n", date.Format("15:04 MST"), segmentNames(cfg.Segments))
	log.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"segments": segmentNames(cfg.Segments),
	}).Info("Starting pipeline run")

	// S1: Universe
	stageStart := time.Now()
	instruments, err := o.universe.Load(ctx, cfg.Segments)
	if err != nil {
		result.Stages = append(result.Stages, stageResult(contracts.StageUniverse, len(cfg.Segments), 0, stageStart, err))
		return result, fmt.Errorf("S1 failed: %w", err)
	}
	result.Instruments = len(instruments)
	result.Stages = append(result.Stages, stageResult(contracts.StageUniverse, len(cfg.Segments), len(instruments), stageStart, nil))
	o.printf("Instruments: %d\n", len(instruments))

	// S2: Quotes
	stageStart = time.Now()
	fetched := o.quotes.Fetch(ctx, contracts.Tickers(instruments), func(done, total int, status string) {
		o.printf("  [%d/%d] %s\n", done, total, status)
	})
	result.Resolved = len(fetched.Quotes)
	result.FailedBatches = fetched.FailedBatches
	result.SkipCounts = fetched.SkipCounts()
	result.Stages = append(result.Stages, stageResult(contracts.StageQuotes, len(instruments), len(fetched.Quotes), stageStart, nil))

	// S3: Metrics
	stageStart = time.Now()
	rows := o.metrics.Build(instruments, fetched.Quotes)
	result.Rows = len(rows)
	result.Stages = append(result.Stages, stageResult(contracts.StageMetrics, len(fetched.Quotes), len(rows), stageStart, nil))

	// S4: Snapshot
	stageStart = time.Now()
	path, err := o.writer.Write(rows, date)
	if err != nil {
		result.Stages = append(result.Stages, stageResult(contracts.StageSnapshot, len(rows), 0, stageStart, err))
		return result, fmt.Errorf("S4 failed: %w", err)
	}
	result.Path = path
	result.Stages = append(result.Stages, stageResult(contracts.StageSnapshot, len(rows), len(rows), stageStart, nil))

	if o.archive != nil {
		n, err := o.archive.Save(ctx, date, rows)
		if err != nil {
			log.WithError(err).Warn("Snapshot archive failed, CSV kept")
		}
		result.Archived = n
	}

	result.Duration = o.now().Sub(start)
	o.printf("Saved: %s  (%d rows)\n", path, len(rows))

	log.WithFields(map[string]interface{}{
		"instruments":    result.Instruments,
		"resolved":       result.Resolved,
		"failed_batches": result.FailedBatches,
		"rows":           result.Rows,
		"path":           result.Path,
		"duration":       result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.progress, format, args...)
}

func stageResult(stage contracts.Stage, in, out int, start time.Time, err error) contracts.StageResult {
	r := contracts.StageResult{
		Stage:       stage,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func segmentNames(segments []contracts.Segment) string {
	names := make([]string, len(segments))
	for i, s := range segments {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}

// SkipSummary renders skip counts in a stable order, e.g. "batch failed=100, no data=3"
func (r *RunResult) SkipSummary() string {
	if len(r.SkipCounts) == 0 {
		return "none"
	}
	reasons := make([]string, 0, len(r.SkipCounts))
	for reason := range r.SkipCounts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", reason, r.SkipCounts[reason])
	}
	return strings.Join(parts, ", ")
}
