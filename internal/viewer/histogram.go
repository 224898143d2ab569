package viewer

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/tse-screener/internal/contracts"
)

// Change distribution settings of the result list
const (
	HistogramClip = 10.0
	HistogramBins = 40
)

// Bin is one half-open interval (Left, Right] of a histogram
type Bin struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Count int     `json:"count"`
}

// Label renders the bin as "-1.5~-1.0"
func (b Bin) Label() string {
	return fmt.Sprintf("%.1f~%.1f", b.Left, b.Right)
}

// ChangeHistogram is the change_pct distribution clipped to ±10 in 40 bins
func ChangeHistogram(rows []contracts.SnapshotRow) []Bin {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ChangePct
	}
	return Histogram(values, HistogramClip, HistogramBins)
}

// Histogram clips values to [-clip, clip] and splits the observed range into
// equal-width bins. The lowest edge is pushed out by 0.1% of the range so the
// minimum falls inside the first bin.
func Histogram(values []float64, clip float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	clipped := make([]float64, 0, len(values))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		v = math.Max(-clip, math.Min(clip, v))
		clipped = append(clipped, v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(clipped) == 0 {
		return nil
	}

	// a single distinct value gets a small window around it
	flat := lo == hi
	if flat {
		pad := 0.001 * math.Abs(lo)
		if lo == 0 {
			pad = 0.001
		}
		lo, hi = lo-pad, hi+pad
	}

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + (hi-lo)*float64(i)/float64(bins)
	}
	edges[bins] = hi
	if !flat {
		edges[0] -= 0.001 * (hi - lo)
	}

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Left: edges[i], Right: edges[i+1]}
	}
	for _, v := range clipped {
		// first edge >= v closes the bin that holds v
		i := sort.SearchFloat64s(edges, v) - 1
		out[max(0, min(i, bins-1))].Count++
	}
	return out
}
