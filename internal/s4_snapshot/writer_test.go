package s4_snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/pkg/logger"
)

func sampleRows() []contracts.SnapshotRow {
	return []contracts.SnapshotRow{
		{
			Code: "1234", Ticker: "1234.T", CompanyName: "極洋", Market: "プライム（内国株式）", Sector: "食品",
			Open: 100, High: 110, Low: 95, Close: 105, PrevClose: contracts.NewNullFloat(102), Volume: 1000000,
			ChangePct: 5, DayOverDayPct: contracts.NewNullFloat(2.94), RangePct: 15, RangePosition: 0.667,
			UpperWickRatio: 0.333, VWAPApprox: 103, TurnoverMillions: 103, CloseToVWAP: 1.019,
			OverallRank: 1, SectorRank: 1, SectorCount: 2, SectorPercentile: 0.5, VsSector: 2.5,
		},
		{
			Code: "2345", Ticker: "2345.T", CompanyName: "テスト食品", Market: "グロース（内国株式）", Sector: "食品",
			Open: 50, High: 50, Low: 50, Close: 50, Volume: 0,
			RangePosition: 0, UpperWickRatio: 0, VWAPApprox: 50, CloseToVWAP: 1,
			OverallRank: 2, SectorRank: 2, SectorCount: 2, SectorPercentile: 1, VsSector: -2.5,
		},
	}
}

func newTestWriter(t *testing.T, parquetMirror bool) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return NewWriter(WriterConfig{Dir: dir, Prefix: "tse_daily", Location: tokyo, WriteParquet: parquetMirror}, logger.Nop()), dir
}

func TestWrite_NameUsesExchangeDate(t *testing.T) {
	w, dir := newTestWriter(t, false)

	// 2026-10-15 20:00 UTC is already 10-16 in Tokyo
	runDate := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	path, err := w.Write(sampleRows(), runDate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tse_daily_2026-10-16.csv"), path)
}

func TestWrite_BOMHeaderAndOptionalCells(t *testing.T) {
	w, _ := newTestWriter(t, false)

	path, err := w.Write(sampleRows(), time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	lines := strings.Split(strings.TrimSpace(string(data[len(utf8BOM):])), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(contracts.SnapshotColumns(), ","), lines[0])
	assert.Contains(t, lines[1], "極洋")
	assert.Contains(t, lines[1], ",102,1000000,5,2.94,")
	// missing prev_close and day_over_day_pct stay empty
	assert.Contains(t, lines[2], ",50,,0,0,,0,")
}

func TestWrite_RoundTrip(t *testing.T) {
	w, _ := newTestWriter(t, false)

	path, err := w.Write(sampleRows(), time.Now())
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), got)
}

func TestWrite_OverwritesSameDay(t *testing.T) {
	w, dir := newTestWriter(t, false)
	day := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	_, err := w.Write(sampleRows(), day)
	require.NoError(t, err)
	path, err := w.Write(sampleRows()[:1], day)
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWrite_EmptyRowsStillWritesHeader(t *testing.T) {
	w, _ := newTestWriter(t, false)

	path, err := w.Write(nil, time.Now())
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWrite_ParquetMirror(t *testing.T) {
	w, dir := newTestWriter(t, true)
	day := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	_, err := w.Write(sampleRows(), day)
	require.NoError(t, err)

	rows, err := parquet.ReadFile[parquetRow](filepath.Join(dir, "tse_daily_2026-10-15.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1234", rows[0].Code)
	require.NotNil(t, rows[0].DayOverDayPct)
	assert.Equal(t, 2.94, *rows[0].DayOverDayPct)
	assert.Nil(t, rows[1].PrevClose)
}

func TestDecode_WithoutBOM(t *testing.T) {
	csv := strings.Join(contracts.SnapshotColumns(), ",") + "\n" +
		"7203,7203.T,トヨタ自動車,プライム（内国株式）,自動車・輸送機,3000,3050,2980,3020,,100,0.67,,2.33,0.571,0.429,3017,0.3,1.001,1,1,1,1,0\n"
	rows, err := Decode([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7203", rows[0].Code)
	assert.False(t, rows[0].PrevClose.Valid)
	assert.Equal(t, 0.67, rows[0].ChangePct)
}
