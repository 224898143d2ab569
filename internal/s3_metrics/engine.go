package s3_metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/pkg/logger"
)

// Engine joins quotes with reference data and derives the snapshot metrics
// ⭐ SSOT: S3 지표 계산은 여기서만
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new Metrics Engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log.Module("s3_metrics")}
}

// Build produces one row per instrument that has a quote (inner join on code),
// sorted by code. s2_quotes never resolves a quote without a positive open;
// one that arrives anyway is counted and left out rather than divided by zero.
func (e *Engine) Build(instruments []contracts.Instrument, quotes map[string]contracts.QuoteRecord) []contracts.SnapshotRow {
	byCode := make(map[string]contracts.Instrument, len(instruments))
	for _, inst := range instruments {
		byCode[inst.Code] = inst
	}

	rows := make([]contracts.SnapshotRow, 0, len(quotes))
	unmatched, badOpen := 0, 0
	for _, q := range quotes {
		inst, ok := byCode[q.Code]
		if !ok {
			unmatched++
			continue
		}
		if q.Open <= 0 {
			badOpen++
			continue
		}
		rows = append(rows, rowMetrics(inst, q))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	applyOverallRank(rows)
	applySectorMetrics(rows)

	e.logger.WithFields(map[string]interface{}{
		"instruments":       len(instruments),
		"quotes":            len(quotes),
		"rows":              len(rows),
		"unmatched_quotes":  unmatched,
		"non_positive_open": badOpen,
	}).Info("Metrics computed")

	return rows
}

// rowMetrics computes the per-row fields that need no other row
func rowMetrics(inst contracts.Instrument, q contracts.QuoteRecord) contracts.SnapshotRow {
	open, high, low, cls := dec(q.Open), dec(q.High), dec(q.Low), dec(q.Close)
	rng := rangeDenominator(high, low)

	vwap := high.Add(low).Add(cls).Div(three).Round(0)
	closeToVWAP := decimal.Zero
	if !vwap.IsZero() {
		closeToVWAP = cls.Div(vwap)
	}

	row := contracts.SnapshotRow{
		Code:        inst.Code,
		Ticker:      inst.Ticker,
		CompanyName: inst.Name,
		Market:      inst.SegmentLabel,
		Sector:      inst.Sector,

		Open:      q.Open,
		High:      q.High,
		Low:       q.Low,
		Close:     q.Close,
		PrevClose: contracts.NullFloatFrom(q.PrevClose),
		Volume:    q.Volume,

		ChangePct:        out(pct(cls.Sub(open), open), 2),
		RangePct:         out(pct(high.Sub(low), open), 2),
		RangePosition:    out(cls.Sub(low).Div(rng), 3),
		UpperWickRatio:   out(high.Sub(cls).Div(rng), 3),
		VWAPApprox:       vwap.InexactFloat64(),
		TurnoverMillions: out(vwap.Mul(decimal.NewFromInt(q.Volume)).Div(million), 1),
		CloseToVWAP:      out(closeToVWAP, 3),

		TradeDate: q.TradeDate,
	}

	if q.PrevClose != nil && *q.PrevClose > 0 {
		prev := dec(*q.PrevClose)
		row.DayOverDayPct = contracts.NewNullFloat(out(pct(cls.Sub(prev), prev), 2))
	}
	return row
}

// applyOverallRank ranks the rounded change_pct across every row
func applyOverallRank(rows []contracts.SnapshotRow) {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ChangePct
	}
	for i, rank := range MinRankDesc(values) {
		rows[i].OverallRank = rank
	}
}

// applySectorMetrics computes rank, count, percentile and mean-relative change
// inside each sector. An empty sector name is a group of its own.
func applySectorMetrics(rows []contracts.SnapshotRow) {
	groups := make(map[string][]int)
	for i, r := range rows {
		groups[r.Sector] = append(groups[r.Sector], i)
	}

	for _, members := range groups {
		count := len(members)
		values := make([]float64, count)
		sum := decimal.Zero
		for k, i := range members {
			values[k] = rows[i].ChangePct
			sum = sum.Add(dec(rows[i].ChangePct))
		}
		mean := sum.Div(decimal.NewFromInt(int64(count)))

		for k, rank := range MinRankDesc(values) {
			i := members[k]
			rows[i].SectorRank = rank
			rows[i].SectorCount = count
			rows[i].SectorPercentile = out(decimal.NewFromInt(int64(rank)).Div(decimal.NewFromInt(int64(count))), 3)
			rows[i].VsSector = out(dec(rows[i].ChangePct).Sub(mean), 2)
		}
	}
}
