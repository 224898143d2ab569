package contracts

import (
	"context"
	"time"
)

// UniverseLoader resolves the instruments of the requested segments (S1)
// ⭐ SSOT: S1 유니버스 인터페이스
type UniverseLoader interface {
	Load(ctx context.Context, segments []Segment) ([]Instrument, error)
}

// BarSource retrieves recent daily bars for one batch of tickers in one call (S2).
// A returned error fails the whole batch. A ticker missing from the map has no data.
// ⭐ SSOT: S2 시세 소스 인터페이스
type BarSource interface {
	FetchDaily(ctx context.Context, tickers []string, lookback string) (map[string]BarTable, error)
}

// SnapshotArchive stores the rows of one run outside the CSV file (S4, optional)
type SnapshotArchive interface {
	Save(ctx context.Context, tradeDate time.Time, rows []SnapshotRow) (int, error)
}
