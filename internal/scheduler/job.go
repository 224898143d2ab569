package scheduler

import (
	"context"
	"time"
)

// Job is one cron-driven task of the screener
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule is a cron expression with a seconds field, evaluated in the
	// exchange time zone, e.g. "0 30 16 * * 1-5"
	Schedule() string

	// Timeout bounds a single attempt. Zero leaves it to Stop.
	Timeout() time.Duration

	Run(ctx context.Context) (Report, error)
}

// Report describes what a finished run produced
type Report struct {
	RunID   string `json:"run_id,omitempty"`
	Skipped bool   `json:"skipped,omitempty"` // 주말 등 정책상 건너뜀
	Rows    int    `json:"rows,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Saved reports whether the run wrote a snapshot
func (r Report) Saved() bool {
	return !r.Skipped && r.Path != ""
}

// JobResult is one history entry
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Report    Report        `json:"report"`
}

// maxHistory keeps roughly three months of trading days
const maxHistory = 60

// JobHistory holds the newest maxHistory results, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result and drops the oldest beyond maxHistory
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - maxHistory; over > 0 {
		h.Results = append(h.Results[:0:0], h.Results[over:]...)
	}
}

// Last returns the newest result
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// LastSaved returns the newest run that wrote a snapshot
func (h *JobHistory) LastSaved() (JobResult, bool) {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if r := h.Results[i]; r.Success && r.Report.Saved() {
			return r, true
		}
	}
	return JobResult{}, false
}

// FailureStreak counts consecutive failures ending at the newest result
func (h *JobHistory) FailureStreak() int {
	n := 0
	for i := len(h.Results) - 1; i >= 0 && !h.Results[i].Success; i-- {
		n++
	}
	return n
}

// Failures counts failed results
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is in [0, 1]; an empty history has rate 0
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}
