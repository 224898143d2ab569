package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/wonny/tse-screener/internal/pipeline"
	"github.com/wonny/tse-screener/pkg/logger"
)

// Runner starts one pipeline run
type Runner interface {
	Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error)
}

// PipelineHandler triggers runs in the background and reports the last one.
// Only one run may be in flight.
type PipelineHandler struct {
	runner Runner
	runCfg pipeline.RunConfig
	logger *logger.Logger

	mu      sync.Mutex
	running string
	last    *pipeline.RunResult
	lastErr string
	wg      sync.WaitGroup
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(runner Runner, runCfg pipeline.RunConfig, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		runCfg: runCfg,
		logger: log.Module("api"),
	}
}

// Trigger starts a run
// POST /api/pipeline/run
func (h *PipelineHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.running != "" {
		running := h.running
		h.mu.Unlock()
		respondJSON(w, http.StatusConflict, map[string]string{
			"error":  "A run is already in progress",
			"run_id": running,
		})
		return
	}
	runID := uuid.NewString()
	h.running = runID
	h.mu.Unlock()

	cfg := h.runCfg
	cfg.RunID = runID

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// the request context ends with the response, the run must outlive it
		result, err := h.runner.Run(context.Background(), cfg)

		h.mu.Lock()
		defer h.mu.Unlock()
		h.running = ""
		h.last = result
		h.lastErr = ""
		if err != nil {
			h.lastErr = err.Error()
			h.logger.WithError(err).WithField("run_id", runID).Error("Triggered run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"run_id": runID,
	})
}

// Status reports the in-flight run and the last result
// GET /api/pipeline/status
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	body := map[string]interface{}{
		"running": h.running != "",
	}
	if h.running != "" {
		body["run_id"] = h.running
	}
	if h.last != nil {
		body["last"] = h.last
	}
	if h.lastErr != "" {
		body["last_error"] = h.lastErr
	}
	respondJSON(w, http.StatusOK, body)
}

// Wait blocks until background runs finish
func (h *PipelineHandler) Wait() {
	h.wg.Wait()
}
