package contracts

import (
	"fmt"
	"strings"
)

// TickerSuffix is the Tokyo market suffix used by the quote provider
const TickerSuffix = ".T"

// Instrument is one listed issue, immutable for the run
// ⭐ SSOT: S1 → S2/S3 종목 정보 전달
type Instrument struct {
	Code         string  `json:"code"`          // 4자리 코드 (e.g. "7203")
	Ticker       string  `json:"ticker"`        // "7203.T"
	Name         string  `json:"name"`          // 銘柄名
	Segment      Segment `json:"segment"`       // Prime / Standard / Growth
	SegmentLabel string  `json:"segment_label"` // 市場・商品区分
	Sector       string  `json:"sector"`        // 17業種区分
}

// NormalizeCode trims whitespace and a trailing ".0" left by spreadsheet
// numeric cells, then zero-pads to 4 characters.
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	code = strings.TrimSuffix(code, ".0")
	if len(code) < 4 {
		code = strings.Repeat("0", 4-len(code)) + code
	}
	return code
}

// TickerFor derives the provider ticker of a code
func TickerFor(code string) string {
	return NormalizeCode(code) + TickerSuffix
}

// CodeFromTicker strips the market suffix
func CodeFromTicker(ticker string) string {
	return strings.TrimSuffix(ticker, TickerSuffix)
}

// Tickers returns the tickers of instruments in order
func Tickers(instruments []Instrument) []string {
	out := make([]string, len(instruments))
	for i, inst := range instruments {
		out[i] = inst.Ticker
	}
	return out
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s %s (%s/%s)", i.Code, i.Name, i.Segment, i.Sector)
}
