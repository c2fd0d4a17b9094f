// Package storage defines the archive that keeps a record of every
// freeze-thaw run: the counts it produced and the trends fitted to them.
package storage

import (
	"context"
	"time"

	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

// Archive is implemented by run archive backends
type Archive interface {
	SaveRun(ctx context.Context, run *Run) error
	LatestRun(ctx context.Context) (*Run, error)
	Close() error
}

// Run is one invocation of the pipeline
type Run struct {
	ID        string
	CreatedAt time.Time
	Input     string
	Dense     bool
	Counts    []climate.MonthlyCount
	Trends    []TrendRow
}

// TrendRow is a fitted line over one series of a run. Scope is "annual" for
// the yearly totals or "month-01" through "month-12" for a calendar month.
// RSquared is absent for a series with no variance.
type TrendRow struct {
	Scope     string
	Points    int
	Slope     float64
	Intercept float64
	RSquared  trend.NullFloat64
}
