package s1_universe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/external/jpx"
	"github.com/wonny/tse-screener/pkg/logger"
)

type fakeMaster struct {
	rows  []jpx.MasterRow
	err   error
	calls int
}

func (f *fakeMaster) FetchMaster(ctx context.Context) ([]jpx.MasterRow, error) {
	f.calls++
	return f.rows, f.err
}

func masterRows() []jpx.MasterRow {
	return []jpx.MasterRow{
		{Code: "1301", Name: "極洋", SegmentLabel: "プライム（内国株式）", Sector17: "食品"},
		{Code: "1305", Name: "ETF", SegmentLabel: "ETF・ETN", Sector17: "-"},
		{Code: "25.0", Name: "テスト", SegmentLabel: "グロース（内国株式）", Sector17: "情報通信・サービスその他"},
		{Code: "7203", Name: "トヨタ自動車", SegmentLabel: "プライム（内国株式）", Sector17: "自動車・輸送機"},
		{Code: "1418", Name: "インターライフ", SegmentLabel: "スタンダード（内国株式）", Sector17: "建設・資材"},
		{Code: "7203", Name: "重複", SegmentLabel: "プライム（内国株式）", Sector17: "自動車・輸送機"},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		segments []contracts.Segment
		want     []string
	}{
		{"prime only", []contracts.Segment{contracts.SegmentPrime}, []string{"1301.T", "7203.T"}},
		{"growth pads code", []contracts.Segment{contracts.SegmentGrowth}, []string{"0025.T"}},
		{"all segments", contracts.AllSegments(), []string{"1301.T", "0025.T", "7203.T", "1418.T"}},
		{"unknown dropped", []contracts.Segment{"Mothers", contracts.SegmentStandard}, []string{"1418.T"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeMaster{rows: masterRows()}
			got, err := NewLoader(src, logger.Nop()).Load(context.Background(), tt.segments)
			require.NoError(t, err)
			assert.Equal(t, tt.want, contracts.Tickers(got))
		})
	}
}

func TestLoad_InstrumentFields(t *testing.T) {
	src := &fakeMaster{rows: masterRows()}
	got, err := NewLoader(src, logger.Nop()).Load(context.Background(), []contracts.Segment{contracts.SegmentGrowth})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, contracts.Instrument{
		Code:         "0025",
		Ticker:       "0025.T",
		Name:         "テスト",
		Segment:      contracts.SegmentGrowth,
		SegmentLabel: "グロース（内国株式）",
		Sector:       "情報通信・サービスその他",
	}, got[0])
}

func TestLoad_RefetchesEveryCall(t *testing.T) {
	src := &fakeMaster{rows: masterRows()}
	loader := NewLoader(src, logger.Nop())

	for i := 0; i < 2; i++ {
		_, err := loader.Load(context.Background(), contracts.AllSegments())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)
}

func TestLoad_Failures(t *testing.T) {
	t.Run("source error is fatal", func(t *testing.T) {
		src := &fakeMaster{err: errors.New("connection reset")}
		_, err := NewLoader(src, logger.Nop()).Load(context.Background(), contracts.AllSegments())
		assert.ErrorIs(t, err, ErrUniverseUnavailable)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("empty master is fatal", func(t *testing.T) {
		src := &fakeMaster{}
		_, err := NewLoader(src, logger.Nop()).Load(context.Background(), contracts.AllSegments())
		assert.ErrorIs(t, err, ErrUniverseUnavailable)
	})

	t.Run("no known segment", func(t *testing.T) {
		src := &fakeMaster{rows: masterRows()}
		_, err := NewLoader(src, logger.Nop()).Load(context.Background(), []contracts.Segment{"Mothers"})
		assert.ErrorIs(t, err, ErrNoSegments)
		assert.Zero(t, src.calls)
	})
}
