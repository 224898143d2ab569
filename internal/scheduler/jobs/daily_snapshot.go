package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tse-screener/internal/pipeline"
	"github.com/wonny/tse-screener/internal/scheduler"
	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
)

// DailySnapshotJobName is the scheduler key of the daily job
const DailySnapshotJobName = "daily_snapshot"

// Runner is the pipeline entry point the job drives
type Runner interface {
	Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error)
}

// DailySnapshotJob runs the EOD pipeline once per scheduled trigger
// ⭐ SSOT: 일일 스냅샷 스케줄은 이 Job에서만
type DailySnapshotJob struct {
	runner   Runner
	runCfg   pipeline.RunConfig
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewDailySnapshotJob creates the daily snapshot job from the schedule settings
func NewDailySnapshotJob(runner Runner, runCfg pipeline.RunConfig, sched config.ScheduleConfig, log *logger.Logger) *DailySnapshotJob {
	return &DailySnapshotJob{
		runner:   runner,
		runCfg:   runCfg,
		schedule: sched.Cron,
		timeout:  sched.JobTimeout,
		logger:   log.Module("jobs"),
	}
}

// Name returns the job name
func (j *DailySnapshotJob) Name() string {
	return DailySnapshotJobName
}

// Schedule returns the cron schedule (with seconds)
func (j *DailySnapshotJob) Schedule() string {
	return j.schedule
}

// Timeout bounds one pipeline run
func (j *DailySnapshotJob) Timeout() time.Duration {
	return j.timeout
}

// Run executes one pipeline run. The run date is the trigger time.
func (j *DailySnapshotJob) Run(ctx context.Context) (scheduler.Report, error) {
	cfg := j.runCfg
	cfg.RunID = ""

	result, err := j.runner.Run(ctx, cfg)
	if err != nil {
		return scheduler.Report{}, fmt.Errorf("daily snapshot: %w", err)
	}

	report := scheduler.Report{RunID: result.RunID, Skipped: result.Skipped}
	if result.Skipped {
		j.logger.WithField("reason", result.SkipReason).Info("Daily snapshot skipped")
		return report, nil
	}
	report.Rows = result.Rows
	report.Path = result.Path

	j.logger.WithFields(map[string]interface{}{
		"run_id":         result.RunID,
		"rows":           result.Rows,
		"failed_batches": result.FailedBatches,
		"skipped":        result.SkipSummary(),
		"path":           result.Path,
	}).Info("Daily snapshot saved")

	return report, nil
}
