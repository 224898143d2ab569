package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/tse-screener/internal/viewer"
	"github.com/wonny/tse-screener/pkg/database"
	"github.com/wonny/tse-screener/pkg/redis"
)

// HealthHandler reports service health. The archive DB and Redis are optional.
type HealthHandler struct {
	store   *viewer.Store
	db      *database.DB
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a new health handler. db and rdb may be nil.
func NewHealthHandler(store *viewer.Store, db *database.DB, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{store: store, db: db, redis: rdb, version: version}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	body := map[string]interface{}{
		"service": "tse-screener",
		"version": h.version,
	}

	if files, err := h.store.Files(); err == nil && len(files) > 0 {
		body["latest_snapshot"] = files[0].DateLabel
	} else {
		body["latest_snapshot"] = nil
	}

	if h.db != nil {
		dbStatus, err := h.db.HealthCheck(ctx)
		if err != nil {
			status = "degraded"
		}
		body["database"] = dbStatus
	} else {
		body["database"] = "disabled"
	}

	if h.redis.Enabled() {
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			status = "degraded"
			body["redis"] = err.Error()
		} else {
			body["redis"] = "ok"
		}
	} else {
		body["redis"] = "disabled"
	}

	body["status"] = status
	respondJSON(w, http.StatusOK, body)
}
