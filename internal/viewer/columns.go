package viewer

import (
	"strings"

	"github.com/wonny/tse-screener/internal/contracts"
)

// DefaultSortColumn is used when a preset names a column the snapshot does not have
const DefaultSortColumn = "change_pct"

type numericGetter func(r *contracts.SnapshotRow) (float64, bool)

func always(f func(r *contracts.SnapshotRow) float64) numericGetter {
	return func(r *contracts.SnapshotRow) (float64, bool) { return f(r), true }
}

func optional(f func(r *contracts.SnapshotRow) contracts.NullFloat) numericGetter {
	return func(r *contracts.SnapshotRow) (float64, bool) {
		n := f(r)
		return n.Value, n.Valid
	}
}

var numericColumns = map[string]numericGetter{
	"open":              always(func(r *contracts.SnapshotRow) float64 { return r.Open }),
	"high":              always(func(r *contracts.SnapshotRow) float64 { return r.High }),
	"low":               always(func(r *contracts.SnapshotRow) float64 { return r.Low }),
	"close":             always(func(r *contracts.SnapshotRow) float64 { return r.Close }),
	"prev_close":        optional(func(r *contracts.SnapshotRow) contracts.NullFloat { return r.PrevClose }),
	"volume":            always(func(r *contracts.SnapshotRow) float64 { return float64(r.Volume) }),
	"change_pct":        always(func(r *contracts.SnapshotRow) float64 { return r.ChangePct }),
	"day_over_day_pct":  optional(func(r *contracts.SnapshotRow) contracts.NullFloat { return r.DayOverDayPct }),
	"range_pct":         always(func(r *contracts.SnapshotRow) float64 { return r.RangePct }),
	"range_position":    always(func(r *contracts.SnapshotRow) float64 { return r.RangePosition }),
	"upper_wick_ratio":  always(func(r *contracts.SnapshotRow) float64 { return r.UpperWickRatio }),
	"vwap_approx":       always(func(r *contracts.SnapshotRow) float64 { return r.VWAPApprox }),
	"turnover_millions": always(func(r *contracts.SnapshotRow) float64 { return r.TurnoverMillions }),
	"close_to_vwap":     always(func(r *contracts.SnapshotRow) float64 { return r.CloseToVWAP }),
	"overall_rank":      always(func(r *contracts.SnapshotRow) float64 { return float64(r.OverallRank) }),
	"sector_rank":       always(func(r *contracts.SnapshotRow) float64 { return float64(r.SectorRank) }),
	"sector_count":      always(func(r *contracts.SnapshotRow) float64 { return float64(r.SectorCount) }),
	"sector_percentile": always(func(r *contracts.SnapshotRow) float64 { return r.SectorPercentile }),
	"vs_sector":         always(func(r *contracts.SnapshotRow) float64 { return r.VsSector }),
}

var textColumns = map[string]func(r *contracts.SnapshotRow) string{
	"code":         func(r *contracts.SnapshotRow) string { return r.Code },
	"ticker":       func(r *contracts.SnapshotRow) string { return r.Ticker },
	"company_name": func(r *contracts.SnapshotRow) string { return r.CompanyName },
	"market":       func(r *contracts.SnapshotRow) string { return r.Market },
	"sector":       func(r *contracts.SnapshotRow) string { return r.Sector },
}

// IsColumn reports whether name is a sortable snapshot column
func IsColumn(name string) bool {
	name = strings.ToLower(name)
	_, num := numericColumns[name]
	_, txt := textColumns[name]
	return num || txt
}

// compareRows orders a and b on column. Missing numeric values compare as
// greater than any value in ascending order so they end up last either way.
func compareRows(column string, ascending bool) func(a, b *contracts.SnapshotRow) int {
	if get, ok := textColumns[column]; ok {
		return func(a, b *contracts.SnapshotRow) int {
			c := strings.Compare(get(a), get(b))
			if !ascending {
				c = -c
			}
			return c
		}
	}

	get := numericColumns[column]
	return func(a, b *contracts.SnapshotRow) int {
		va, oka := get(a)
		vb, okb := get(b)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		}

		c := 0
		if va < vb {
			c = -1
		} else if va > vb {
			c = 1
		}
		if !ascending {
			c = -c
		}
		return c
	}
}
