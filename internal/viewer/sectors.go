package viewer

import (
	"math"
	"slices"
	"sort"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/s3_metrics"
)

// SectorStat aggregates change_pct over one sector
type SectorStat struct {
	Rank          int                 `json:"rank"`
	Sector        string              `json:"sector"`
	Count         int                 `json:"count"`
	Up            int                 `json:"up"`
	Down          int                 `json:"down"`
	WinRate       float64             `json:"win_rate"` // % of rows with change_pct > 0, 1 dp
	Mean          float64             `json:"mean"`     // 2 dp
	Median        float64             `json:"median"`
	Max           float64             `json:"max"`
	Min           float64             `json:"min"`
	StdDev        contracts.NullFloat `json:"std_dev"` // sample, 2 dp; missing for a single row
	TotalTurnover float64             `json:"total_turnover"`
}

// SectorSummary groups rows by sector and ranks sectors by mean change, best first.
// Sectors with equal rounded means share the average of their positions, truncated
// to an integer: two sectors tied for first are both 1, three are all 2.
func SectorSummary(rows []contracts.SnapshotRow) []SectorStat {
	groups := make(map[string][]contracts.SnapshotRow)
	for _, r := range rows {
		groups[r.Sector] = append(groups[r.Sector], r)
	}

	stats := make([]SectorStat, 0, len(groups))
	for sector, members := range groups {
		stats = append(stats, sectorStat(sector, members))
	}

	// sector name first so ties are stable
	sort.Slice(stats, func(i, j int) bool { return stats[i].Sector < stats[j].Sector })

	means := make([]float64, len(stats))
	for i, s := range stats {
		means[i] = s.Mean
	}
	for i, rank := range s3_metrics.AverageRankDesc(means) {
		stats[i].Rank = int(rank)
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Mean > stats[j].Mean })
	return stats
}

func sectorStat(sector string, rows []contracts.SnapshotRow) SectorStat {
	st := SectorStat{Sector: sector, Count: len(rows)}

	values := make([]float64, len(rows))
	sum := 0.0
	for i, r := range rows {
		v := r.ChangePct
		values[i] = v
		sum += v
		st.TotalTurnover += r.TurnoverMillions
		switch {
		case v > 0:
			st.Up++
		case v < 0:
			st.Down++
		}
	}

	n := float64(len(values))
	mean := sum / n
	st.Mean = s3_metrics.Round(mean, 2)
	st.WinRate = s3_metrics.Round(float64(st.Up)/n*100, 1)
	st.TotalTurnover = s3_metrics.Round(st.TotalTurnover, 1)

	slices.Sort(values)
	st.Min = values[0]
	st.Max = values[len(values)-1]
	st.Median = median(values)

	if len(values) > 1 {
		ss := 0.0
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		st.StdDev = contracts.NewNullFloat(s3_metrics.Round(math.Sqrt(ss/(n-1)), 2))
	}
	return st
}

// median of sorted values
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SectorMovers returns the top n and bottom n rows of one sector by change_pct.
// Bottom is worst first.
func SectorMovers(rows []contracts.SnapshotRow, sector string, n int) (top, bottom []contracts.SnapshotRow) {
	if n <= 0 {
		n = 10
	}

	members := make([]contracts.SnapshotRow, 0)
	for _, r := range rows {
		if r.Sector == sector {
			members = append(members, r)
		}
	}
	slices.SortStableFunc(members, func(a, b contracts.SnapshotRow) int {
		switch {
		case a.ChangePct > b.ChangePct:
			return -1
		case a.ChangePct < b.ChangePct:
			return 1
		}
		return 0
	})

	top = slices.Clone(members[:min(n, len(members))])
	bottom = slices.Clone(members[max(0, len(members)-n):])
	slices.Reverse(bottom)
	return top, bottom
}

// Sectors returns the distinct sectors in rows, sorted
func Sectors(rows []contracts.SnapshotRow) []string {
	return distinct(rows, func(r contracts.SnapshotRow) string { return r.Sector })
}

// Markets returns the distinct market labels in rows, sorted
func Markets(rows []contracts.SnapshotRow) []string {
	return distinct(rows, func(r contracts.SnapshotRow) string { return r.Market })
}

func distinct(rows []contracts.SnapshotRow, key func(contracts.SnapshotRow) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
