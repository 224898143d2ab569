package s4_snapshot

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/wonny/tse-screener/internal/contracts"
)

// parquetRow mirrors SnapshotRow with optional columns as pointers
type parquetRow struct {
	Code        string `parquet:"code,dict"`
	Ticker      string `parquet:"ticker"`
	CompanyName string `parquet:"company_name"`
	Market      string `parquet:"market,dict"`
	Sector      string `parquet:"sector,dict"`

	Open      float64  `parquet:"open"`
	High      float64  `parquet:"high"`
	Low       float64  `parquet:"low"`
	Close     float64  `parquet:"close"`
	PrevClose *float64 `parquet:"prev_close,optional"`
	Volume    int64    `parquet:"volume"`

	ChangePct        float64  `parquet:"change_pct"`
	DayOverDayPct    *float64 `parquet:"day_over_day_pct,optional"`
	RangePct         float64  `parquet:"range_pct"`
	RangePosition    float64  `parquet:"range_position"`
	UpperWickRatio   float64  `parquet:"upper_wick_ratio"`
	VWAPApprox       float64  `parquet:"vwap_approx"`
	TurnoverMillions float64  `parquet:"turnover_millions"`
	CloseToVWAP      float64  `parquet:"close_to_vwap"`

	OverallRank      int32   `parquet:"overall_rank"`
	SectorRank       int32   `parquet:"sector_rank"`
	SectorCount      int32   `parquet:"sector_count"`
	SectorPercentile float64 `parquet:"sector_percentile"`
	VsSector         float64 `parquet:"vs_sector"`
}

func toParquetRow(r contracts.SnapshotRow) parquetRow {
	return parquetRow{
		Code:             r.Code,
		Ticker:           r.Ticker,
		CompanyName:      r.CompanyName,
		Market:           r.Market,
		Sector:           r.Sector,
		Open:             r.Open,
		High:             r.High,
		Low:              r.Low,
		Close:            r.Close,
		PrevClose:        r.PrevClose.Ptr(),
		Volume:           r.Volume,
		ChangePct:        r.ChangePct,
		DayOverDayPct:    r.DayOverDayPct.Ptr(),
		RangePct:         r.RangePct,
		RangePosition:    r.RangePosition,
		UpperWickRatio:   r.UpperWickRatio,
		VWAPApprox:       r.VWAPApprox,
		TurnoverMillions: r.TurnoverMillions,
		CloseToVWAP:      r.CloseToVWAP,
		OverallRank:      int32(r.OverallRank),
		SectorRank:       int32(r.SectorRank),
		SectorCount:      int32(r.SectorCount),
		SectorPercentile: r.SectorPercentile,
		VsSector:         r.VsSector,
	}
}

// writeParquet writes the snapshot mirror with snappy compression
func writeParquet(path string, rows []contracts.SnapshotRow) error {
	out := make([]parquetRow, len(rows))
	for i, r := range rows {
		out[i] = toParquetRow(r)
	}

	return atomicWrite(path, func(f *os.File) error {
		pw := parquet.NewGenericWriter[parquetRow](f, parquet.Compression(&parquet.Snappy))
		if _, err := pw.Write(out); err != nil {
			pw.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("close parquet writer: %w", err)
		}
		return nil
	})
}

