package s2_quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
)

// DefaultBackoffMultiplier applies when the configured multiplier would not lengthen the pause
const DefaultBackoffMultiplier = 2.0

// Config holds batching parameters
type Config struct {
	BatchSize         int
	Lookback          string
	Sleep             time.Duration // pause between batches
	BackoffMultiplier float64       // pause after a failed batch = Sleep × BackoffMultiplier, > 1
}

// ConfigFrom extracts the batcher settings from the pipeline config
func ConfigFrom(p config.PipelineConfig) Config {
	return Config{
		BatchSize:         p.BatchSize,
		Lookback:          p.Lookback,
		Sleep:             p.Sleep,
		BackoffMultiplier: p.BackoffMultiplier,
	}
}

// ProgressFunc observes batch completion. It is called once per batch, failed or not.
type ProgressFunc func(done, total int, status string)

// Result is keyed by ticker. Outcomes keeps one entry per requested ticker in batch order.
type Result struct {
	Quotes        map[string]contracts.QuoteRecord
	Outcomes      []contracts.Outcome
	Batches       int
	FailedBatches int
}

// SkipCounts tallies skipped tickers by reason
func (r Result) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, o := range r.Outcomes {
		if !o.IsResolved() {
			counts[o.SkipReason]++
		}
	}
	return counts
}

// Batcher splits tickers into fixed-size batches and asks the BarSource for each batch once
// ⭐ SSOT: S2 시세 배치 취득
type Batcher struct {
	source contracts.BarSource
	cfg    Config
	logger *logger.Logger
	sleep  func(ctx context.Context, d time.Duration)
}

// NewBatcher creates a new Quote Batcher
func NewBatcher(source contracts.BarSource, cfg Config, log *logger.Logger) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Lookback == "" {
		cfg.Lookback = "5d"
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}
	return &Batcher{
		source: source,
		cfg:    cfg,
		logger: log.Module("s2_quotes"),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Fetch resolves at most one QuoteRecord per ticker.
// A failed batch is logged, followed by a backoff pause, and skipped without retry.
// Cancelling ctx stops after the current batch; unprocessed tickers get no outcome.
func (b *Batcher) Fetch(ctx context.Context, tickers []string, progress ProgressFunc) Result {
	n := len(tickers)
	result := Result{
		Quotes:   make(map[string]contracts.QuoteRecord, n),
		Outcomes: make([]contracts.Outcome, 0, n),
	}

	size := b.cfg.BatchSize
	backoff := time.Duration(float64(b.cfg.Sleep) * b.cfg.BackoffMultiplier)

	for i := 0; i < n; i += size {
		if ctx.Err() != nil {
			b.logger.WithError(ctx.Err()).Warn("Quote fetch cancelled")
			break
		}

		end := min(i+size, n)
		batch := tickers[i:end]
		result.Batches++

		tables, err := b.source.FetchDaily(ctx, batch, b.cfg.Lookback)
		if err != nil {
			result.FailedBatches++
			b.logger.WithError(err).WithFields(map[string]interface{}{
				"batch": result.Batches,
				"first": batch[0],
				"size":  len(batch),
			}).Error("Batch download failed, skipping")

			for _, t := range batch {
				result.Outcomes = append(result.Outcomes, contracts.Skipped(t, contracts.SkipBatchFailed))
			}
			if progress != nil {
				progress(end, n, fmt.Sprintf("Error: %v", err))
			}
			b.sleep(ctx, backoff)
			continue
		}

		for _, t := range batch {
			table, ok := tables[t]
			var outcome contracts.Outcome
			if !ok {
				outcome = contracts.Skipped(t, contracts.SkipNoData)
			} else {
				outcome = Extract(t, table)
			}

			result.Outcomes = append(result.Outcomes, outcome)
			if outcome.IsResolved() {
				result.Quotes[t] = *outcome.Quote
			}
		}

		if progress != nil {
			progress(end, n, batch[0]+" ...")
		}
		if end < n {
			b.sleep(ctx, b.cfg.Sleep)
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"tickers":        n,
		"resolved":       len(result.Quotes),
		"batches":        result.Batches,
		"failed_batches": result.FailedBatches,
	}).Info("Quote fetch completed")

	return result
}
