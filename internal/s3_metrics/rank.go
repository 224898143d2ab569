package s3_metrics

import "sort"

// MinRankDesc ranks values from largest to smallest. Ties share the smallest
// position of the tie, so the result is 1 + the number of strictly larger values.
// The result does not depend on the order of values.
func MinRankDesc(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})

	ranks := make([]int, len(values))
	for pos, i := range idx {
		if pos > 0 && values[i] == values[idx[pos-1]] {
			ranks[i] = ranks[idx[pos-1]]
			continue
		}
		ranks[i] = pos + 1
	}
	return ranks
}

// AverageRankDesc ranks values from largest to smallest. Ties share the mean
// of the positions they span, e.g. three values tied for first all get 2.
func AverageRankDesc(values []float64) []float64 {
	ranks := make([]float64, len(values))
	for i, v := range values {
		greater, equal := 0, 0
		for _, w := range values {
			switch {
			case w > v:
				greater++
			case w == v:
				equal++
			}
		}
		ranks[i] = float64(greater) + float64(equal+1)/2
	}
	return ranks
}
