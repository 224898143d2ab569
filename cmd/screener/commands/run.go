package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tse-screener/internal/pipeline"
	"github.com/wonny/tse-screener/internal/s4_snapshot"
	"github.com/wonny/tse-screener/pkg/database"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "日次スナップショットを取得して保存",
	Long: `Runs the daily pipeline once:
  S1 universe (JPX master list) → S2 quotes (batched) → S3 metrics → S4 CSV snapshot

Exit status is 0 when the run is skipped for the weekend, non-zero when the
universe cannot be loaded or the snapshot cannot be written. Failed quote
batches only shrink the output.

Example:
  go run ./cmd/screener run
  go run ./cmd/screener run --markets Prime,Growth --out ./output
  go run ./cmd/screener run --no-skip-weekend --parquet`,
	RunE: runPipeline,
}

var (
	runMarkets       []string
	runNoSkipWeekend bool
	runOutDir        string
	runParquet       bool
	runBatchSize     int
	runSleep         time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runMarkets, "markets", nil, "segments to fetch (Prime,Standard,Growth); default MARKETS")
	runCmd.Flags().BoolVar(&runNoSkipWeekend, "no-skip-weekend", false, "run on Saturday and Sunday too")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "output directory; default OUTPUT_DIR")
	runCmd.Flags().BoolVar(&runParquet, "parquet", false, "also write a parquet mirror")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "tickers per batch; default BATCH_SIZE")
	runCmd.Flags().DurationVar(&runSleep, "sleep", -1, "pause between batches; default BATCH_SLEEP")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flag overrides
	if len(runMarkets) > 0 {
		cfg.Pipeline.Markets = runMarkets
	}
	if runNoSkipWeekend {
		cfg.Pipeline.SkipWeekend = false
	}
	if runOutDir != "" {
		cfg.Pipeline.OutputDir = runOutDir
	}
	if runParquet {
		cfg.Pipeline.WriteParquet = true
	}
	if runBatchSize > 0 {
		cfg.Pipeline.BatchSize = runBatchSize
	}
	if runSleep >= 0 {
		cfg.Pipeline.Sleep = runSleep
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg, true)
	defer a.Close()

	orch := pipeline.New(cfg, a.log, os.Stdout, pipeline.Deps{DB: archiveDB(ctx, a), Redis: a.redis})
	result, err := orch.Run(ctx, pipeline.RunConfigFrom(cfg))
	if err != nil {
		PrintWarning(err.Error())
		return err
	}

	printRunSummary(result)
	return nil
}

// archiveDB prepares the archive schema, returning nil when the archive cannot be used
func archiveDB(ctx context.Context, a *app) *database.DB {
	if a.db == nil {
		return nil
	}
	if err := s4_snapshot.NewRepository(a.db.Pool).EnsureSchema(ctx); err != nil {
		a.log.WithError(err).Warn("Archive schema unavailable, archive disabled")
		return nil
	}
	return a.db
}

func printRunSummary(r *pipeline.RunResult) {
	if r.Skipped {
		return
	}

	PrintHeader("Run summary")
	PrintKeyValue("Run ID", r.RunID, 14)
	PrintKeyValue("Date", r.Date.Format("2006-01-02 (Mon)"), 14)
	PrintKeyValue("Instruments", fmt.Sprintf("%d", r.Instruments), 14)
	PrintKeyValue("Resolved", fmt.Sprintf("%d", r.Resolved), 14)
	PrintKeyValue("Failed batches", fmt.Sprintf("%d", r.FailedBatches), 14)
	PrintKeyValue("Skipped", r.SkipSummary(), 14)
	PrintKeyValue("Rows", fmt.Sprintf("%d", r.Rows), 14)
	if r.Archived > 0 {
		PrintKeyValue("Archived", fmt.Sprintf("%d", r.Archived), 14)
	}
	PrintKeyValue("Duration", r.Duration.Round(time.Millisecond).String(), 14)
	PrintSeparator()
	for _, s := range r.Stages {
		PrintKeyValue(s.Stage.ShortName(), fmt.Sprintf("%d → %d  (%dms)", s.InputCount, s.OutputCount, s.Duration), 14)
	}
	PrintDoubleSeparator()
	PrintSuccess(fmt.Sprintf("Saved %s", r.Path))
}
