package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []Segment
	}{
		{"all", []string{"Prime", "Standard", "Growth"}, []Segment{SegmentPrime, SegmentStandard, SegmentGrowth}},
		{"case and spaces", []string{" prime", "GROWTH "}, []Segment{SegmentPrime, SegmentGrowth}},
		{"unknown dropped", []string{"Prime", "TokyoPro", "JASDAQ"}, []Segment{SegmentPrime}},
		{"duplicates collapse", []string{"Growth", "growth"}, []Segment{SegmentGrowth}},
		{"nothing known", []string{"Mothers"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSegments(tt.in))
		})
	}
}

func TestSegmentLabels(t *testing.T) {
	assert.Equal(t, "プライム（内国株式）", SegmentPrime.Label())
	assert.Equal(t, "", Segment("Other").Label())

	seg, ok := SegmentForLabel("グロース（内国株式）")
	require.True(t, ok)
	assert.Equal(t, SegmentGrowth, seg)

	_, ok = SegmentForLabel("ETF・ETN")
	assert.False(t, ok)
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"7203":   "7203",
		"1301.0": "1301",
		" 25 ":   "0025",
		"130A":   "130A",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCode(in), in)
	}
	assert.Equal(t, "0025.T", TickerFor("25"))
	assert.Equal(t, "7203", CodeFromTicker("7203.T"))
}

func TestBarTable_Len(t *testing.T) {
	v := 1.0
	ok := BarTable{
		Open: []*float64{&v}, High: []*float64{&v}, Low: []*float64{&v},
		Close: []*float64{&v}, Volume: []*float64{&v},
	}
	ok.Timestamps = make([]time.Time, 1)
	n, err := ok.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bad := ok
	bad.Close = nil
	_, err = bad.Len()
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	r := Resolved(QuoteRecord{Ticker: "7203.T", Close: 10})
	assert.True(t, r.IsResolved())
	assert.Equal(t, "7203.T", r.Ticker)

	s := Skipped("9999.T", SkipNoData)
	assert.False(t, s.IsResolved())
	assert.Equal(t, SkipNoData, s.SkipReason)
}

func TestNullFloat(t *testing.T) {
	var n NullFloat
	s, err := n.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "", s)

	require.NoError(t, n.UnmarshalCSV("2.94"))
	assert.True(t, n.Valid)
	assert.Equal(t, 2.94, n.Value)

	s, _ = n.MarshalCSV()
	assert.Equal(t, "2.94", s)

	require.NoError(t, n.UnmarshalCSV(""))
	assert.False(t, n.Valid)
	assert.Nil(t, n.Ptr())

	assert.Error(t, n.UnmarshalCSV("abc"))

	data, err := json.Marshal(struct {
		A NullFloat `json:"a"`
		B NullFloat `json:"b"`
	}{A: NewNullFloat(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))
}

func TestStages(t *testing.T) {
	assert.Len(t, AllStages(), 4)
	assert.Equal(t, "S3", StageMetrics.ShortName())
	assert.Equal(t, "UNKNOWN", Stage("X").ShortName())
}
