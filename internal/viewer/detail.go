package viewer

import (
	"fmt"

	"github.com/wonny/tse-screener/internal/contracts"
)

// Range position bands
const (
	BandHigh = "高値圏"
	BandMid  = "中間"
	BandLow  = "安値圏"
)

const (
	highBandFrom     = 0.7
	lowBandTo        = 0.3
	wickPressureFrom = 0.6
)

// Detail is one row plus the derived reading of its candle
type Detail struct {
	contracts.SnapshotRow
	RangeBand    string `json:"range_band"`
	WickPressure bool   `json:"wick_pressure"` // 売り圧力あり
	AboveVWAP    bool   `json:"above_vwap"`
}

// RangeBand classifies a range position
func RangeBand(pos float64) string {
	switch {
	case pos >= highBandFrom:
		return BandHigh
	case pos <= lowBandTo:
		return BandLow
	default:
		return BandMid
	}
}

// NewDetail builds the detail view of a row
func NewDetail(r contracts.SnapshotRow) Detail {
	return Detail{
		SnapshotRow:  r,
		RangeBand:    RangeBand(r.RangePosition),
		WickPressure: r.UpperWickRatio >= wickPressureFrom,
		AboveVWAP:    r.CloseToVWAP >= 1,
	}
}

// FindDetail looks up a code (padded to four digits) in rows
func FindDetail(rows []contracts.SnapshotRow, code string) (Detail, error) {
	code = contracts.NormalizeCode(code)
	for _, r := range rows {
		if r.Code == code {
			return NewDetail(r), nil
		}
	}
	return Detail{}, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
}
