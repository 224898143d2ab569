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
	"github.com/wonny/tse-screener/internal/scheduler"
	"github.com/wonny/tse-screener/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "スケジューラー管理",
	Long: `Runs the daily snapshot on a cron schedule.

Subcommands:
  start   - run the scheduler daemon
  run     - run the daily job once now

The schedule is SCHEDULE_CRON (with seconds) in TZ_EXCHANGE,
default "0 30 16 * * 1-5" (weekdays 16:30 Tokyo).

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler run`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "スケジューラー起動",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run",
		Short: "日次ジョブを即時実行",
		RunE:  runSchedulerJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TSE Screener Scheduler ===")

	sched, a, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	PrintSuccess("Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func runSchedulerJobNow(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	job := jobs.DailySnapshotJobName
	fmt.Printf("Running job: %s\n", job)
	result, err := sched.RunJob(job)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if result.Report.Skipped {
		PrintInfo("Job skipped by policy")
		return nil
	}
	PrintSuccess("Job completed")
	PrintKeyValue("Run ID", result.Report.RunID, 10)
	PrintKeyValue("Rows", fmt.Sprintf("%d", result.Report.Rows), 10)
	PrintKeyValue("File", result.Report.Path, 10)
	PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String(), 10)
	return nil
}

func initScheduler() (*scheduler.Scheduler, *app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	a := newApp(ctx, cfg, true)

	orch := pipeline.New(cfg, a.log, os.Stdout, pipeline.Deps{DB: archiveDB(ctx, a), Redis: a.redis})

	sched := scheduler.New(cfg.Location(), a.log)
	if err := sched.AddJob(jobs.NewDailySnapshotJob(orch, pipeline.RunConfigFrom(cfg), cfg.Schedule, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}
	return sched, a, nil
}
