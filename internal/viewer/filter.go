package viewer

import (
	"strings"

	"github.com/wonny/tse-screener/internal/contracts"
)

// AllMarkets disables the market filter
const AllMarkets = "すべて"

// Default change_pct window of the result list
const (
	DefaultChgMin = -20.0
	DefaultChgMax = 20.0
)

// Filter narrows the rows shown in the result list
type Filter struct {
	Market      string   // segment identifier or label; "", "all" or すべて means every market
	Sectors     []string // empty means every sector
	MinTurnover float64  // applied only when > 0
	ChgMin      float64
	ChgMax      float64
}

// DefaultFilter keeps every row whose change_pct lies in -20..20
func DefaultFilter() Filter {
	return Filter{ChgMin: DefaultChgMin, ChgMax: DefaultChgMax}
}

// marketLabel resolves a segment identifier to its label, leaving labels as they are
func marketLabel(market string) string {
	market = strings.TrimSpace(market)
	switch strings.ToLower(market) {
	case "", "all", AllMarkets:
		return ""
	}
	if segs := contracts.ParseSegments([]string{market}); len(segs) == 1 {
		return segs[0].Label()
	}
	return market
}

// Apply returns the rows that pass every condition, in their original order.
// The change window is inclusive on both ends.
func (f Filter) Apply(rows []contracts.SnapshotRow) []contracts.SnapshotRow {
	market := marketLabel(f.Market)

	var sectors map[string]bool
	if len(f.Sectors) > 0 {
		sectors = make(map[string]bool, len(f.Sectors))
		for _, s := range f.Sectors {
			sectors[s] = true
		}
	}

	out := make([]contracts.SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if market != "" && r.Market != market {
			continue
		}
		if sectors != nil && !sectors[r.Sector] {
			continue
		}
		if f.MinTurnover > 0 && r.TurnoverMillions < f.MinTurnover {
			continue
		}
		if r.ChangePct < f.ChgMin || r.ChangePct > f.ChgMax {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ByMarket keeps the rows of one market; "" or すべて keeps all
func ByMarket(rows []contracts.SnapshotRow, market string) []contracts.SnapshotRow {
	label := marketLabel(market)
	if label == "" {
		return rows
	}
	out := make([]contracts.SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if r.Market == label {
			out = append(out, r)
		}
	}
	return out
}
