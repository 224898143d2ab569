package s4_snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tse-screener/internal/contracts"
)

// Repository archives snapshot rows in PostgreSQL keyed by (trade_date, code).
// Re-running a day overwrites that day's rows, same as the CSV.
// ⭐ SSOT: 스냅샷 DB 아카이브는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS screener;
	CREATE TABLE IF NOT EXISTS screener.daily_snapshots (
		trade_date        DATE NOT NULL,
		code              TEXT NOT NULL,
		ticker            TEXT NOT NULL,
		company_name      TEXT NOT NULL,
		market            TEXT NOT NULL,
		sector            TEXT NOT NULL,
		open              DOUBLE PRECISION NOT NULL,
		high              DOUBLE PRECISION NOT NULL,
		low               DOUBLE PRECISION NOT NULL,
		close             DOUBLE PRECISION NOT NULL,
		prev_close        DOUBLE PRECISION,
		volume            BIGINT NOT NULL,
		change_pct        DOUBLE PRECISION NOT NULL,
		day_over_day_pct  DOUBLE PRECISION,
		range_pct         DOUBLE PRECISION NOT NULL,
		range_position    DOUBLE PRECISION NOT NULL,
		upper_wick_ratio  DOUBLE PRECISION NOT NULL,
		vwap_approx       DOUBLE PRECISION NOT NULL,
		turnover_millions DOUBLE PRECISION NOT NULL,
		close_to_vwap     DOUBLE PRECISION NOT NULL,
		overall_rank      INTEGER NOT NULL,
		sector_rank       INTEGER NOT NULL,
		sector_count      INTEGER NOT NULL,
		sector_percentile DOUBLE PRECISION NOT NULL,
		vs_sector         DOUBLE PRECISION NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (trade_date, code)
	);
`

// EnsureSchema creates the archive table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const upsertQuery = `
	INSERT INTO screener.daily_snapshots (
		trade_date, code, ticker, company_name, market, sector,
		open, high, low, close, prev_close, volume,
		change_pct, day_over_day_pct, range_pct, range_position, upper_wick_ratio,
		vwap_approx, turnover_millions, close_to_vwap,
		overall_rank, sector_rank, sector_count, sector_percentile, vs_sector, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, NOW()
	)
	ON CONFLICT (trade_date, code) DO UPDATE SET
		ticker = EXCLUDED.ticker,
		company_name = EXCLUDED.company_name,
		market = EXCLUDED.market,
		sector = EXCLUDED.sector,
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		prev_close = EXCLUDED.prev_close,
		volume = EXCLUDED.volume,
		change_pct = EXCLUDED.change_pct,
		day_over_day_pct = EXCLUDED.day_over_day_pct,
		range_pct = EXCLUDED.range_pct,
		range_position = EXCLUDED.range_position,
		upper_wick_ratio = EXCLUDED.upper_wick_ratio,
		vwap_approx = EXCLUDED.vwap_approx,
		turnover_millions = EXCLUDED.turnover_millions,
		close_to_vwap = EXCLUDED.close_to_vwap,
		overall_rank = EXCLUDED.overall_rank,
		sector_rank = EXCLUDED.sector_rank,
		sector_count = EXCLUDED.sector_count,
		sector_percentile = EXCLUDED.sector_percentile,
		vs_sector = EXCLUDED.vs_sector,
		updated_at = NOW()
`

// Save upserts rows for tradeDate in one transaction and returns the row count
func (r *Repository) Save(ctx context.Context, tradeDate time.Time, rows []contracts.SnapshotRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertQuery, upsertArgs(tradeDate, row)...)
	}

	br := tx.SendBatch(ctx, batch)
	for _, row := range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("upsert snapshot row %s: %w", row.Code, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}

func upsertArgs(tradeDate time.Time, r contracts.SnapshotRow) []interface{} {
	return []interface{}{
		tradeDate.Format(DateLayout), r.Code, r.Ticker, r.CompanyName, r.Market, r.Sector,
		r.Open, r.High, r.Low, r.Close, r.PrevClose.Ptr(), r.Volume,
		r.ChangePct, r.DayOverDayPct.Ptr(), r.RangePct, r.RangePosition, r.UpperWickRatio,
		r.VWAPApprox, r.TurnoverMillions, r.CloseToVWAP,
		r.OverallRank, r.SectorRank, r.SectorCount, r.SectorPercentile, r.VsSector,
	}
}

// LatestDate returns the most recent archived trade date, or false when the archive is empty
func (r *Repository) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var d *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(trade_date) FROM screener.daily_snapshots`).Scan(&d)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest snapshot date: %w", err)
	}
	if d == nil {
		return time.Time{}, false, nil
	}
	return *d, true, nil
}

// CountByDate returns how many rows are archived for tradeDate
func (r *Repository) CountByDate(ctx context.Context, tradeDate time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM screener.daily_snapshots WHERE trade_date = $1`,
		tradeDate.Format(DateLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count snapshot rows: %w", err)
	}
	return n, nil
}
