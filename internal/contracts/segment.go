package contracts

import "strings"

// Segment is a TSE market segment identifier
type Segment string

const (
	SegmentPrime    Segment = "Prime"
	SegmentStandard Segment = "Standard"
	SegmentGrowth   Segment = "Growth"
)

// ⭐ SSOT: 시장 구분 → JPX 마스터 리스트 라벨 매핑
var segmentLabels = map[Segment]string{
	SegmentPrime:    "プライム（内国株式）",
	SegmentStandard: "スタンダード（内国株式）",
	SegmentGrowth:   "グロース（内国株式）",
}

// AllSegments returns every known segment in display order
func AllSegments() []Segment {
	return []Segment{SegmentPrime, SegmentStandard, SegmentGrowth}
}

// Label returns the canonical master-list label, or "" for an unknown segment
func (s Segment) Label() string {
	return segmentLabels[s]
}

// IsValid reports whether s is a known segment
func (s Segment) IsValid() bool {
	_, ok := segmentLabels[s]
	return ok
}

// ParseSegments maps identifiers to segments. Matching is case-insensitive,
// unknown identifiers are dropped, duplicates collapse to the first occurrence.
func ParseSegments(ids []string) []Segment {
	seen := make(map[Segment]bool, len(ids))
	var out []Segment
	for _, id := range ids {
		id = strings.TrimSpace(id)
		for _, seg := range AllSegments() {
			if strings.EqualFold(id, string(seg)) && !seen[seg] {
				seen[seg] = true
				out = append(out, seg)
			}
		}
	}
	return out
}

// SegmentForLabel finds the segment whose master-list label is label
func SegmentForLabel(label string) (Segment, bool) {
	for seg, l := range segmentLabels {
		if l == label {
			return seg, true
		}
	}
	return "", false
}
