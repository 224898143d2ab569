package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/tse-screener/pkg/logger"
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	// ctx is cancelled by Stop so a running job can wind down
	ctx    context.Context
	cancel context.CancelFunc

	// Retry configuration. The daily snapshot is at-most-once, so retries are off by default.
	maxRetries int
	retryDelay time.Duration
}

// New creates a new scheduler. Cron expressions carry a seconds field and are
// evaluated in loc (the exchange time zone).
func New(loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:     log.Module("scheduler"),
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: 0,
		retryDelay: 1 * time.Minute,
	}
}

// WithRetry enables retries for failed jobs
func (s *Scheduler) WithRetry(maxRetries int, delay time.Duration) *Scheduler {
	s.maxRetries = maxRetries
	s.retryDelay = delay
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[jobName]
	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(id)
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns the next activation time of a job
func (s *Scheduler) NextRun(jobName string) (time.Time, error) {
	s.mu.RLock()
	id, exists := s.entries[jobName]
	s.mu.RUnlock()

	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", jobName)
	}
	return s.cron.Entry(id).Next, nil
}

// RunJob runs a specific job immediately (outside of schedule) and waits for it.
// The result is recorded in the job's history like a scheduled run.
func (s *Scheduler) RunJob(jobName string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	result := s.runJob(job)
	if !result.Success {
		return result, fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}
	return result, nil
}

// runJob executes a job, retrying failed attempts when enabled.
// Each attempt gets the job's own timeout.
func (s *Scheduler) runJob(job Job) JobResult {
	jobName := job.Name()
	result := JobResult{JobName: jobName, StartTime: time.Now()}

	s.logger.WithField("job", jobName).Info("Job started")

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result.Attempts++
		report, err := s.attempt(job)
		if err == nil {
			result.Success = true
			result.Report = report
			break
		}

		lastErr = err
		if attempt < s.maxRetries {
			s.logger.WithFields(map[string]interface{}{
				"job":     jobName,
				"attempt": attempt + 1,
				"error":   err.Error(),
			}).Warn("Job execution failed, retrying")

			select {
			case <-s.ctx.Done():
				attempt = s.maxRetries
			case <-time.After(s.retryDelay):
			}
		}
	}

	result.Duration = time.Since(result.StartTime)
	if !result.Success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.Add(result)
	}
	s.mu.Unlock()

	fields := map[string]interface{}{
		"job":      jobName,
		"duration": result.Duration.String(),
		"attempts": result.Attempts,
	}
	switch {
	case !result.Success:
		fields["error"] = result.Error
		s.logger.WithFields(fields).Error("Job failed")
	case result.Report.Skipped:
		s.logger.WithFields(fields).Info("Job skipped by policy")
	default:
		fields["run_id"] = result.Report.RunID
		fields["rows"] = result.Report.Rows
		s.logger.WithFields(fields).Info("Job completed successfully")
	}

	return result
}

func (s *Scheduler) attempt(job Job) (Report, error) {
	ctx := s.ctx
	if timeout := job.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

// GetJobHistory returns the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return history, nil
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, job := range s.jobs {
		history := s.history[jobName]
		failures := history.Failures()

		st := JobStats{
			JobName:       jobName,
			Schedule:      job.Schedule(),
			TotalRuns:     len(history.Results),
			SuccessCount:  len(history.Results) - failures,
			FailureCount:  failures,
			FailureStreak: history.FailureStreak(),
			SuccessRate:   history.SuccessRate(),
		}
		if last, ok := history.Last(); ok {
			st.LastRun = &last.StartTime
			if !last.Success {
				st.LastError = last.Error
			}
		}
		if saved, ok := history.LastSaved(); ok {
			st.LastSnapshot = &saved.StartTime
			st.LastPath = saved.Report.Path
		}
		stats[jobName] = st
	}

	return stats
}

// JobStats summarises a job's history
type JobStats struct {
	JobName       string     `json:"job_name"`
	Schedule      string     `json:"schedule"`
	TotalRuns     int        `json:"total_runs"`
	SuccessCount  int        `json:"success_count"`
	FailureCount  int        `json:"failure_count"`
	FailureStreak int        `json:"failure_streak"`
	SuccessRate   float64    `json:"success_rate"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	LastSnapshot  *time.Time `json:"last_snapshot,omitempty"`
	LastPath      string     `json:"last_path,omitempty"`
}
