package s1_universe

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/external/jpx"
	"github.com/wonny/tse-screener/pkg/logger"
)

// ErrUniverseUnavailable wraps any failure to obtain the master list. Fatal to the run.
var ErrUniverseUnavailable = errors.New("universe unavailable")

// ErrNoSegments is returned when none of the requested segments is known
var ErrNoSegments = errors.New("no known market segment requested")

// MasterSource provides the full listed-issues master list
type MasterSource interface {
	FetchMaster(ctx context.Context) ([]jpx.MasterRow, error)
}

// Loader resolves the instruments of the requested segments.
// The master list is fetched on every call; nothing is cached between runs.
type Loader struct {
	source MasterSource
	logger *logger.Logger
}

// NewLoader creates a new Universe Loader
func NewLoader(source MasterSource, log *logger.Logger) *Loader {
	return &Loader{
		source: source,
		logger: log.Module("s1_universe"),
	}
}

// Load returns the instruments listed in segments, in master list order
// ⭐ SSOT: S1 유니버스 생성
func (l *Loader) Load(ctx context.Context, segments []contracts.Segment) ([]contracts.Instrument, error) {
	wanted := make(map[string]contracts.Segment, len(segments))
	for _, seg := range segments {
		if seg.IsValid() {
			wanted[seg.Label()] = seg
		}
	}
	if len(wanted) == 0 {
		return nil, ErrNoSegments
	}

	rows, err := l.source.FetchMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUniverseUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: master list has no rows", ErrUniverseUnavailable)
	}

	instruments := make([]contracts.Instrument, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	perSegment := make(map[contracts.Segment]int, len(wanted))

	for _, row := range rows {
		seg, ok := wanted[row.SegmentLabel]
		if !ok {
			continue
		}

		code := contracts.NormalizeCode(row.Code)
		if seen[code] {
			continue
		}
		seen[code] = true

		instruments = append(instruments, contracts.Instrument{
			Code:         code,
			Ticker:       code + contracts.TickerSuffix,
			Name:         row.Name,
			Segment:      seg,
			SegmentLabel: row.SegmentLabel,
			Sector:       row.Sector17,
		})
		perSegment[seg]++
	}

	fields := map[string]interface{}{
		"master_rows": len(rows),
		"instruments": len(instruments),
	}
	for seg, n := range perSegment {
		fields[string(seg)] = n
	}
	l.logger.WithFields(fields).Info("Universe loaded")

	return instruments, nil
}
