package viewer

import "github.com/wonny/tse-screener/internal/contracts"

// Query is one request against the result list
type Query struct {
	Filter Filter
	Preset Preset
	TopN   int
}

// QueryResult is the ranked slice of the filtered rows
type QueryResult struct {
	Preset     Preset                  `json:"preset"`
	SortColumn string                  `json:"sort_column"`
	Matched    int                     `json:"matched"` // rows passing the filter
	Rows       []contracts.SnapshotRow `json:"rows"`
	Histogram  []Bin                   `json:"histogram,omitempty"`
}

// Run filters, sorts and truncates rows. The histogram covers every matched row.
func (q Query) Run(rows []contracts.SnapshotRow) QueryResult {
	filtered := q.Filter.Apply(rows)
	return QueryResult{
		Preset:     q.Preset,
		SortColumn: q.Preset.SortColumn(),
		Matched:    len(filtered),
		Rows:       Rank(filtered, q.Preset, q.TopN),
		Histogram:  ChangeHistogram(filtered),
	}
}
