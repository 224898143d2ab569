package contracts

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// NullFloat is an optional float column. It encodes as an empty CSV cell and JSON null.
type NullFloat struct {
	Value float64
	Valid bool
}

// NewNullFloat wraps v
func NewNullFloat(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// NullFloatFrom converts an optional pointer
func NullFloatFrom(p *float64) NullFloat {
	if p == nil {
		return NullFloat{}
	}
	return NewNullFloat(*p)
}

// Ptr returns nil when the value is missing
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// MarshalCSV implements gocsv.TypeMarshaller
func (n NullFloat) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (n *NullFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		*n = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = NewNullFloat(v)
	return nil
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NewNullFloat(v)
	return nil
}

// SnapshotRow is one instrument on one trading day: reference data, the quote,
// and the derived metrics. Field order is the CSV column order.
// ⭐ SSOT: S3 → S4 / 뷰어 공통 행 스키마
type SnapshotRow struct {
	Code        string `csv:"code" json:"code"`
	Ticker      string `csv:"ticker" json:"ticker"`
	CompanyName string `csv:"company_name" json:"company_name"`
	Market      string `csv:"market" json:"market"`
	Sector      string `csv:"sector" json:"sector"`

	Open      float64   `csv:"open" json:"open"`
	High      float64   `csv:"high" json:"high"`
	Low       float64   `csv:"low" json:"low"`
	Close     float64   `csv:"close" json:"close"`
	PrevClose NullFloat `csv:"prev_close" json:"prev_close"`
	Volume    int64     `csv:"volume" json:"volume"`

	ChangePct        float64   `csv:"change_pct" json:"change_pct"`
	DayOverDayPct    NullFloat `csv:"day_over_day_pct" json:"day_over_day_pct"`
	RangePct         float64   `csv:"range_pct" json:"range_pct"`
	RangePosition    float64   `csv:"range_position" json:"range_position"`
	UpperWickRatio   float64   `csv:"upper_wick_ratio" json:"upper_wick_ratio"`
	VWAPApprox       float64   `csv:"vwap_approx" json:"vwap_approx"`
	TurnoverMillions float64   `csv:"turnover_millions" json:"turnover_millions"`
	CloseToVWAP      float64   `csv:"close_to_vwap" json:"close_to_vwap"`

	OverallRank      int     `csv:"overall_rank" json:"overall_rank"`
	SectorRank       int     `csv:"sector_rank" json:"sector_rank"`
	SectorCount      int     `csv:"sector_count" json:"sector_count"`
	SectorPercentile float64 `csv:"sector_percentile" json:"sector_percentile"`
	VsSector         float64 `csv:"vs_sector" json:"vs_sector"`

	// Not persisted in the CSV. The file name carries the date.
	TradeDate time.Time `csv:"-" json:"trade_date,omitempty"`
}

// SnapshotColumns lists the CSV header in order
func SnapshotColumns() []string {
	return []string{
		"code", "ticker", "company_name", "market", "sector",
		"open", "high", "low", "close", "prev_close", "volume",
		"change_pct", "day_over_day_pct", "range_pct", "range_position",
		"upper_wick_ratio", "vwap_approx", "turnover_millions", "close_to_vwap",
		"overall_rank", "sector_rank", "sector_count", "sector_percentile", "vs_sector",
	}
}
