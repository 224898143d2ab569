package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/s4_snapshot"
	"github.com/wonny/tse-screener/internal/viewer"
	"github.com/wonny/tse-screener/pkg/logger"
	"github.com/wonny/tse-screener/pkg/redis"
)

// SnapshotHandler serves the snapshot viewer endpoints
// ⭐ SSOT: 스냅샷 조회 API 핸들러는 이 구조체에서만
type SnapshotHandler struct {
	store       *viewer.Store
	presets     []viewer.Preset
	cache       *redis.Cache
	cacheTTL    time.Duration
	defaultTopN int
	logger      *logger.Logger
}

// NewSnapshotHandler creates a new snapshot handler. cache may wrap a disabled client.
func NewSnapshotHandler(
	store *viewer.Store,
	presets []viewer.Preset,
	cache *redis.Cache,
	cacheTTL time.Duration,
	defaultTopN int,
	log *logger.Logger,
) *SnapshotHandler {
	if len(presets) == 0 {
		presets = viewer.DefaultPresets()
	}
	if cacheTTL <= 0 {
		cacheTTL = redis.TTLSnapshot
	}
	if defaultTopN <= 0 {
		defaultTopN = viewer.DefaultTopN
	}
	return &SnapshotHandler{
		store:       store,
		presets:     presets,
		cache:       cache,
		cacheTTL:    cacheTTL,
		defaultTopN: defaultTopN,
		logger:      log.Module("api"),
	}
}

// ListSnapshots returns the available snapshot files, newest first
// GET /api/snapshots
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.Files()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(files),
		"snapshots": files,
	})
}

// GetPresets returns the sort presets
// GET /api/presets
func (h *SnapshotHandler) GetPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": h.presets,
	})
}

// RowsResponse is the body of the rows endpoint
type RowsResponse struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	viewer.QueryResult
}

// GetRows returns the filtered, sorted and truncated rows
// GET /api/snapshots/{date}/rows?market=&sector=&min_turnover=&chg_min=&chg_max=&preset=&n=
func (h *SnapshotHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, rows, ok := h.loadRows(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, RowsResponse{
		Date:        info.DateLabel,
		Total:       len(rows),
		QueryResult: query.Run(rows),
	})
}

// GetRow returns the detail view of one code
// GET /api/snapshots/{date}/rows/{code}
func (h *SnapshotHandler) GetRow(w http.ResponseWriter, r *http.Request) {
	_, rows, ok := h.loadRows(w, r)
	if !ok {
		return
	}

	detail, err := viewer.FindDetail(rows, mux.Vars(r)["code"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetSectors returns the sector summary
// GET /api/snapshots/{date}/sectors?market=
func (h *SnapshotHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	info, rows, ok := h.loadRows(w, r)
	if !ok {
		return
	}
	market := r.URL.Query().Get("market")

	var stats []viewer.SectorStat
	key := redis.SectorSummaryKey(info.Name, info.ModTime.Unix(), market)
	err := h.cache.GetOrSet(r.Context(), key, &stats, h.cacheTTL, func() (interface{}, error) {
		return viewer.SectorSummary(viewer.ByMarket(rows, market)), nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to build sector summary")
		respondError(w, http.StatusInternalServerError, "Failed to build sector summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    info.DateLabel,
		"market":  market,
		"sectors": stats,
	})
}

// GetSector returns the top and bottom movers of one sector
// GET /api/snapshots/{date}/sectors/{sector}?n=&market=
func (h *SnapshotHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 10)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'n' (expected a positive integer)")
		return
	}

	info, rows, ok := h.loadRows(w, r)
	if !ok {
		return
	}

	sector := mux.Vars(r)["sector"]
	rows = viewer.ByMarket(rows, r.URL.Query().Get("market"))
	top, bottom := viewer.SectorMovers(rows, sector, n)
	if len(top) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("%v: %s", viewer.ErrSectorNotFound, sector))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   info.DateLabel,
		"sector": sector,
		"top":    top,
		"bottom": bottom,
	})
}

func (h *SnapshotHandler) parseQuery(r *http.Request) (viewer.Query, error) {
	f := viewer.DefaultFilter()
	f.Market = r.URL.Query().Get("market")
	f.Sectors = queryList(r, "sector")

	var err error
	if f.MinTurnover, err = queryFloat(r, "min_turnover", 0); err != nil {
		return viewer.Query{}, errors.New("invalid 'min_turnover'")
	}
	if f.ChgMin, err = queryFloat(r, "chg_min", viewer.DefaultChgMin); err != nil {
		return viewer.Query{}, errors.New("invalid 'chg_min'")
	}
	if f.ChgMax, err = queryFloat(r, "chg_max", viewer.DefaultChgMax); err != nil {
		return viewer.Query{}, errors.New("invalid 'chg_max'")
	}
	if f.ChgMin > f.ChgMax {
		return viewer.Query{}, errors.New("'chg_min' must not exceed 'chg_max'")
	}

	topN, err := queryInt(r, "n", h.defaultTopN)
	if err != nil || topN <= 0 {
		return viewer.Query{}, errors.New("invalid 'n' (expected a positive integer)")
	}

	preset, err := viewer.SelectPreset(h.presets, r.URL.Query().Get("preset"))
	if err != nil {
		return viewer.Query{}, err
	}

	return viewer.Query{Filter: f, Preset: preset, TopN: topN}, nil
}

// loadRows resolves {date} and returns the decoded rows, writing the error response itself
func (h *SnapshotHandler) loadRows(w http.ResponseWriter, r *http.Request) (s4_snapshot.FileInfo, []contracts.SnapshotRow, bool) {
	info, err := h.store.Find(mux.Vars(r)["date"])
	if err != nil {
		if errors.Is(err, s4_snapshot.ErrNoSnapshots) || errors.Is(err, s4_snapshot.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			h.logger.WithError(err).Error("Failed to resolve snapshot")
			respondError(w, http.StatusInternalServerError, "Failed to resolve snapshot")
		}
		return info, nil, false
	}

	rows, err := h.rows(r.Context(), info)
	if err != nil {
		h.logger.WithError(err).WithField("file", info.Name).Error("Failed to read snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to read snapshot")
		return info, nil, false
	}
	return info, rows, true
}

// rows goes through the cache keyed by file name and mtime, so a rewritten file is a miss
func (h *SnapshotHandler) rows(ctx context.Context, info s4_snapshot.FileInfo) ([]contracts.SnapshotRow, error) {
	var rows []contracts.SnapshotRow
	key := redis.SnapshotRowsKey(info.Name, info.ModTime.Unix())
	err := h.cache.GetOrSet(ctx, key, &rows, h.cacheTTL, func() (interface{}, error) {
		snap, err := h.store.Load(info)
		if err != nil {
			return nil, err
		}
		return snap.Rows, nil
	})
	return rows, err
}
