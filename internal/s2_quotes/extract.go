package s2_quotes

import (
	"math"

	"github.com/wonny/tse-screener/internal/contracts"
)

// Extract turns one ticker's raw history into an Outcome.
// Bars with any missing value are dropped. The newest clean bar is the quote,
// the close of the clean bar before it is the previous close.
// A newest bar without a positive open cannot be measured and is skipped.
func Extract(ticker string, table contracts.BarTable) contracts.Outcome {
	n, err := table.Len()
	if err != nil {
		return contracts.Skipped(ticker, contracts.SkipMalformed)
	}

	clean := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if usable(table.Open[i], table.High[i], table.Low[i], table.Close[i], table.Volume[i]) {
			clean = append(clean, i)
		}
	}
	if len(clean) == 0 {
		return contracts.Skipped(ticker, contracts.SkipEmptyBars)
	}

	last := clean[len(clean)-1]
	if *table.Open[last] <= 0 {
		return contracts.Skipped(ticker, contracts.SkipNoOpen)
	}

	q := contracts.QuoteRecord{
		Code:      contracts.CodeFromTicker(ticker),
		Ticker:    ticker,
		Open:      *table.Open[last],
		High:      *table.High[last],
		Low:       *table.Low[last],
		Close:     *table.Close[last],
		Volume:    int64(math.Round(*table.Volume[last])),
		TradeDate: table.Timestamps[last],
	}
	if len(clean) >= 2 {
		prev := *table.Close[clean[len(clean)-2]]
		q.PrevClose = &prev
	}
	return contracts.Resolved(q)
}

// usable reports whether every value is present, finite and non-negative
func usable(values ...*float64) bool {
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return false
		}
	}
	return true
}
