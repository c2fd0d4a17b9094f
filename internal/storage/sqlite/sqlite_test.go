package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tj/assert"
	"go.uber.org/zap"

	"github.com/chrissnell/freezethaw/internal/storage"
	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(context.Background(), ":memory:", zap.NewNop().Sugar())
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, a.Close())
	})
	return a
}

func TestLatestRunEmpty(t *testing.T) {
	a := openTestArchive(t)

	run, err := a.LatestRun(context.Background())
	assert.True(t, errors.Is(err, ErrNoRuns))
	assert.Nil(t, run)
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	run := &storage.Run{
		Input: "ahccd.csv",
		Counts: []climate.MonthlyCount{
			{Year: 2020, Month: 2, Count: 11},
			{Year: 2020, Month: 1, Count: 2},
		},
		Trends: []storage.TrendRow{
			{Scope: "annual", Points: 1, Slope: -0.25, Intercept: 510, RSquared: trend.NullFloat64{Float64: 0.4, Valid: true}},
			{Scope: "month-07", Points: 3, Slope: 0, Intercept: 0},
		},
	}
	assert.NoError(t, a.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := a.LatestRun(ctx)
	assert.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "ahccd.csv", got.Input)
	assert.False(t, got.Dense)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	// Counts come back ordered by year and month
	assert.Equal(t, []climate.MonthlyCount{
		{Year: 2020, Month: 1, Count: 2},
		{Year: 2020, Month: 2, Count: 11},
	}, got.Counts)

	assert.Len(t, got.Trends, 2)
	assert.Equal(t, "annual", got.Trends[0].Scope)
	assert.True(t, got.Trends[0].RSquared.Valid)
	assert.InDelta(t, 0.4, got.Trends[0].RSquared.Float64, 1e-12)
	assert.False(t, got.Trends[1].RSquared.Valid)
}

func TestLatestRunPicksNewest(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	older := &storage.Run{Input: "old.csv", CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &storage.Run{Input: "new.csv", Dense: true, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC)}
	assert.NoError(t, a.SaveRun(ctx, newer))
	assert.NoError(t, a.SaveRun(ctx, older))

	got, err := a.LatestRun(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "new.csv", got.Input)
	assert.True(t, got.Dense)
	assert.Empty(t, got.Counts)
}

func TestSaveRunRejectsBadCount(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	run := &storage.Run{
		Input:  "bad.csv",
		Counts: []climate.MonthlyCount{{Year: 2020, Month: 13, Count: 1}},
	}
	assert.Error(t, a.SaveRun(ctx, run))

	// The failed transaction leaves nothing behind
	_, err := a.LatestRun(ctx)
	assert.True(t, errors.Is(err, ErrNoRuns))
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "freezethaw.db")

	a, err := Open(ctx, path, zap.NewNop().Sugar())
	assert.NoError(t, err)
	assert.NoError(t, a.SaveRun(ctx, &storage.Run{Input: "a.csv"}))
	assert.NoError(t, a.Close())

	reopened, err := Open(ctx, path, zap.NewNop().Sugar())
	assert.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LatestRun(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "a.csv", got.Input)
}
