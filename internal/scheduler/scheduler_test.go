package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	timeout  time.Duration
	errs     []error
	report   Report
	calls    int
}

func (j *stubJob) Name() string           { return j.name }
func (j *stubJob) Schedule() string       { return j.schedule }
func (j *stubJob) Timeout() time.Duration { return j.timeout }
func (j *stubJob) Run(ctx context.Context) (Report, error) {
	defer func() { j.calls++ }()
	if j.calls < len(j.errs) {
		return Report{}, j.errs[j.calls]
	}
	return j.report, nil
}

// slowJob blocks until its context ends
type slowJob struct{ stubJob }

func (j *slowJob) Run(ctx context.Context) (Report, error) {
	<-ctx.Done()
	return Report{}, ctx.Err()
}

func TestAddJob(t *testing.T) {
	s := New(time.UTC, logger.Nop())

	require.NoError(t, s.AddJob(&stubJob{name: "b", schedule: "0 30 16 * * 1-5"}))
	require.NoError(t, s.AddJob(&stubJob{name: "a", schedule: "@daily"}))
	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	err := s.AddJob(&stubJob{name: "a", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")

	// five-field expressions are rejected, a seconds field is required
	err = s.AddJob(&stubJob{name: "c", schedule: "30 16 * * 1-5"})
	assert.ErrorContains(t, err, "failed to schedule")
}

func TestRemoveJob(t *testing.T) {
	s := New(time.UTC, logger.Nop())
	require.NoError(t, s.AddJob(&stubJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(time.UTC, logger.Nop())
	job := &stubJob{
		name:     "daily",
		schedule: "@daily",
		errs:     []error{errors.New("boom")},
		report:   Report{RunID: "r2", Rows: 3, Path: "output/tse_daily_2026-10-15.csv"},
	}
	require.NoError(t, s.AddJob(job))

	_, err := s.RunJob("daily")
	assert.ErrorContains(t, err, "boom")
	result, err := s.RunJob("daily")
	require.NoError(t, err)
	assert.Equal(t, "r2", result.Report.RunID)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 2, job.calls, "no retries by default")

	history, err := s.GetJobHistory("daily")
	require.NoError(t, err)
	require.Len(t, history.Results, 2)
	assert.False(t, history.Results[0].Success)
	assert.True(t, history.Results[1].Success)

	stats := s.GetJobStats()["daily"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Zero(t, stats.FailureStreak)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	assert.Empty(t, stats.LastError)
	require.NotNil(t, stats.LastSnapshot)
	assert.Equal(t, "output/tse_daily_2026-10-15.csv", stats.LastPath)

	_, err = s.RunJob("missing")
	assert.Error(t, err)
}

func TestRunJob_Retry(t *testing.T) {
	s := New(time.UTC, logger.Nop()).WithRetry(2, time.Millisecond)
	job := &stubJob{name: "flaky", schedule: "@daily", errs: []error{errors.New("1"), errors.New("2")}}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.Equal(t, 3, job.calls)
	assert.Equal(t, 3, result.Attempts)
}

func TestRunJob_Timeout(t *testing.T) {
	s := New(time.UTC, logger.Nop())
	job := &slowJob{stubJob{name: "slow", schedule: "@daily", timeout: 20 * time.Millisecond}}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("slow")
	require.Error(t, err)
	assert.Contains(t, result.Error, context.DeadlineExceeded.Error())

	stats := s.GetJobStats()["slow"]
	assert.Equal(t, 1, stats.FailureStreak)
	assert.Equal(t, result.Error, stats.LastError)
	assert.Nil(t, stats.LastSnapshot)
}

func TestNextRun_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	s := New(tokyo, logger.Nop())
	require.NoError(t, s.AddJob(&stubJob{name: "daily", schedule: "0 30 16 * * *"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("daily")
	require.NoError(t, err)
	local := next.In(tokyo)
	assert.Equal(t, 16, local.Hour())
	assert.Equal(t, 30, local.Minute())

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Zero(t, h.SuccessRate())
	_, ok := h.Last()
	assert.False(t, ok)

	for i := 0; i < maxHistory+10; i++ {
		h.Add(JobResult{Success: i%2 == 0, StartTime: time.Unix(int64(i), 0)})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, maxHistory/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, int64(maxHistory+9), last.StartTime.Unix())
	assert.Equal(t, 1, h.FailureStreak())
}

func TestJobHistory_LastSaved(t *testing.T) {
	h := &JobHistory{}
	h.Add(JobResult{Success: true, Report: Report{Path: "a.csv", Rows: 5}})
	h.Add(JobResult{Success: true, Report: Report{Skipped: true}})
	h.Add(JobResult{Success: false, Error: "S1 failed"})
	h.Add(JobResult{Success: false, Error: "S1 failed"})

	saved, ok := h.LastSaved()
	require.True(t, ok)
	assert.Equal(t, "a.csv", saved.Report.Path)
	assert.Equal(t, 2, h.FailureStreak())
}
