package contracts

import (
	"fmt"
	"time"
)

// BarTable is the raw daily history of one ticker as returned by a BarSource.
// Series are aligned by index with Timestamps. A nil element is a missing value.
type BarTable struct {
	Timestamps []time.Time
	Open       []*float64
	High       []*float64
	Low        []*float64
	Close      []*float64
	Volume     []*float64
}

// Len returns the number of bars, or an error when the series lengths disagree
func (b BarTable) Len() (int, error) {
	n := len(b.Timestamps)
	for name, series := range map[string][]*float64{
		"open": b.Open, "high": b.High, "low": b.Low, "close": b.Close, "volume": b.Volume,
	} {
		if len(series) != n {
			return 0, fmt.Errorf("malformed bar table: %s has %d values, want %d", name, len(series), n)
		}
	}
	return n, nil
}

// QuoteRecord is one instrument's latest daily bar plus the prior bar's close
// ⭐ SSOT: S2 → S3 시세 전달
type QuoteRecord struct {
	Code      string    `json:"code"`
	Ticker    string    `json:"ticker"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	PrevClose *float64  `json:"prev_close,omitempty"` // 2봉 미만이면 nil
	TradeDate time.Time `json:"trade_date"`
}

// HasPrevClose reports whether the previous close is known
func (q QuoteRecord) HasPrevClose() bool {
	return q.PrevClose != nil
}

// Skip reasons recorded on an Outcome
const (
	SkipNoData      = "no data"
	SkipEmptyBars   = "no clean bars"
	SkipMalformed   = "malformed bars"
	SkipNoOpen      = "no opening price" // 시가 0: 등락률 계산 불가
	SkipBatchFailed = "batch failed"
)

// Outcome is the per-ticker result of quote retrieval: either Resolved
// (Quote set) or Skipped (SkipReason set). Exactly one of the two is set.
type Outcome struct {
	Ticker     string       `json:"ticker"`
	Quote      *QuoteRecord `json:"quote,omitempty"`
	SkipReason string       `json:"skip_reason,omitempty"`
}

// Resolved builds a resolved outcome
func Resolved(q QuoteRecord) Outcome {
	return Outcome{Ticker: q.Ticker, Quote: &q}
}

// Skipped builds a skipped outcome
func Skipped(ticker, reason string) Outcome {
	return Outcome{Ticker: ticker, SkipReason: reason}
}

// IsResolved reports whether a quote was produced
func (o Outcome) IsResolved() bool {
	return o.Quote != nil
}
