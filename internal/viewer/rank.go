package viewer

import (
	"slices"

	"github.com/wonny/tse-screener/internal/contracts"
)

// DefaultTopN is the number of rows shown when no limit is given
const DefaultTopN = 30

// Rank sorts rows by the preset column and keeps the first topN.
// The sort is stable, so ties keep the snapshot order (by code).
func Rank(rows []contracts.SnapshotRow, preset Preset, topN int) []contracts.SnapshotRow {
	if topN <= 0 {
		topN = DefaultTopN
	}

	cmp := compareRows(preset.SortColumn(), preset.Ascending)
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, func(a, b contracts.SnapshotRow) int {
		return cmp(&a, &b)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
