package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tse-screener/internal/api/handlers"
	"github.com/wonny/tse-screener/pkg/logger"
)

// Handlers groups the endpoint handlers. Pipeline may be nil for a read-only viewer.
type Handlers struct {
	Health   *handlers.HealthHandler
	Snapshot *handlers.SnapshotHandler
	Pipeline *handlers.PipelineHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Snapshot endpoints ({date} is YYYY-MM-DD or "latest")
	api.HandleFunc("/presets", h.Snapshot.GetPresets).Methods("GET")
	api.HandleFunc("/snapshots", h.Snapshot.ListSnapshots).Methods("GET")
	api.HandleFunc("/snapshots/{date}/rows", h.Snapshot.GetRows).Methods("GET")
	api.HandleFunc("/snapshots/{date}/rows/{code}", h.Snapshot.GetRow).Methods("GET")
	api.HandleFunc("/snapshots/{date}/sectors", h.Snapshot.GetSectors).Methods("GET")
	api.HandleFunc("/snapshots/{date}/sectors/{sector}", h.Snapshot.GetSector).Methods("GET")

	// Pipeline endpoints
	if h.Pipeline != nil {
		api.HandleFunc("/pipeline/run", h.Pipeline.Trigger).Methods("POST")
		api.HandleFunc("/pipeline/status", h.Pipeline.Status).Methods("GET")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// statusRecorder captures the status code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
