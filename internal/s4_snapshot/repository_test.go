package s4_snapshot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertArgs(t *testing.T) {
	row := sampleRows()[1]
	args := upsertArgs(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), row)

	require.Len(t, args, 25)
	assert.Equal(t, "2026-10-15", args[0])
	assert.Equal(t, "2345", args[1])
	assert.Nil(t, args[10].(*float64), "prev_close is NULL")
	assert.Nil(t, args[13].(*float64), "day_over_day_pct is NULL")
}

func TestRepository_SaveIntegration(t *testing.T) {
	// Skip if DATABASE_URL is not set
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	day := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	_, err = pool.Exec(ctx, `DELETE FROM screener.daily_snapshots WHERE trade_date = $1`, day.Format(DateLayout))
	require.NoError(t, err)

	n, err := repo.Save(ctx, day, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// re-running the same day overwrites
	_, err = repo.Save(ctx, day, sampleRows())
	require.NoError(t, err)

	count, err := repo.CountByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
