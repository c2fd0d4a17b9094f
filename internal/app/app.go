// Package app runs the freeze-thaw pipeline: daily records are aggregated into
// monthly counts, written out, charted and optionally archived.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chrissnell/freezethaw/internal/storage"
	"github.com/chrissnell/freezethaw/internal/storage/sqlite"
	"github.com/chrissnell/freezethaw/pkg/chart"
	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/config"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

// Chart file names, joined with the configured directory and format
const (
	HeatmapName     = "heatmap_col"
	MonthlyGridName = "month_plots_single"
	TrendName       = "yeartrendfig"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	style  chart.Style
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	style := chart.DefaultStyle()
	style.Format = cfg.Charts.Format

	return &App{
		cfg:    cfg,
		style:  style,
		logger: logger,
	}
}

// Run executes one pass of the pipeline
func (a *App) Run(ctx context.Context) error {
	records, err := climate.LoadDaily(a.cfg.Input)
	if err != nil {
		return err
	}
	a.logger.Infof("loaded %d daily records from %s", len(records), a.cfg.Input)

	var counts []climate.MonthlyCount
	if a.cfg.Dense {
		counts = climate.AggregateDense(records)
	} else {
		counts = climate.Aggregate(records)
	}

	if err := climate.SaveCounts(a.cfg.Output, counts); err != nil {
		return err
	}
	a.logger.Infof("wrote %d monthly counts to %s", len(counts), a.cfg.Output)

	// Charts and the archive work from the table as written
	counts, err = climate.LoadCounts(a.cfg.Output)
	if err != nil {
		return err
	}

	if a.cfg.AnyCharts() {
		if err := a.render(counts); err != nil {
			return err
		}
	}

	if a.cfg.Archive.Path != "" {
		if err := a.archive(ctx, counts); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) render(counts []climate.MonthlyCount) error {
	if len(counts) == 0 {
		a.logger.Warnf("no freeze-thaw days in %s, skipping charts", a.cfg.Input)
		return nil
	}

	dir := a.cfg.Charts.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory %s: %w", dir, err)
	}

	if a.cfg.Charts.Heatmap {
		path := a.chartPath(HeatmapName)
		if err := chart.Heatmap(counts, path, a.style); err != nil {
			return fmt.Errorf("failed to render heatmap: %w", err)
		}
		a.logger.Infof("wrote %s", path)
	}

	if a.cfg.Charts.Monthly {
		paths, err := chart.MonthlyCharts(counts, dir, a.style)
		if err != nil {
			return fmt.Errorf("failed to render monthly charts: %w", err)
		}
		a.logger.Infof("wrote %d monthly charts to %s", len(paths), dir)
	}

	if a.cfg.Charts.MonthlyGrid {
		path := a.chartPath(MonthlyGridName)
		if err := chart.MonthlyGrid(counts, path, a.style); err != nil {
			return fmt.Errorf("failed to render monthly grid: %w", err)
		}
		a.logger.Infof("wrote %s", path)
	}

	if a.cfg.Charts.Trend {
		path := a.chartPath(TrendName)
		fit, err := chart.Trend(counts, path, a.cfg.Charts.Window, a.style)
		if err != nil {
			return fmt.Errorf("failed to render trend: %w", err)
		}
		a.logger.Infof("wrote %s (slope %.3f days/year, R² %.3f)", path, fit.Slope, fit.RSquared)
	}

	return nil
}

func (a *App) chartPath(name string) string {
	return filepath.Join(a.cfg.Charts.Directory, name+"."+a.style.Format)
}

func (a *App) archive(ctx context.Context, counts []climate.MonthlyCount) error {
	archive, err := sqlite.Open(ctx, a.cfg.Archive.Path, a.logger)
	if err != nil {
		return err
	}
	defer archive.Close()

	run := &storage.Run{
		Input:  a.cfg.Input,
		Dense:  a.cfg.Dense,
		Counts: counts,
		Trends: Trends(counts),
	}
	if err := archive.SaveRun(ctx, run); err != nil {
		return err
	}

	a.logger.Infof("archived run %s to %s", run.ID, a.cfg.Archive.Path)
	return nil
}

// Trends fits a line to the yearly totals and to each calendar month. Series
// with fewer than two years are left out; a flat series is kept with no R².
func Trends(counts []climate.MonthlyCount) []storage.TrendRow {
	var rows []storage.TrendRow
	if row, ok := trendRow("annual", climate.YearlyPoints(counts)); ok {
		rows = append(rows, row)
	}
	for month := 1; month <= 12; month++ {
		if row, ok := trendRow(fmt.Sprintf("month-%02d", month), climate.MonthPoints(counts, month)); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func trendRow(scope string, points []trend.Point) (storage.TrendRow, bool) {
	row := storage.TrendRow{Scope: scope, Points: len(points)}

	fit, err := trend.Fit(points, 1)
	if err == nil {
		row.Slope = fit.Slope
		row.Intercept = fit.Intercept
		row.RSquared = trend.NullFloat64{Float64: fit.RSquared, Valid: true}
		return row, true
	}
	if !errors.Is(err, trend.ErrDegenerateInput) {
		return row, false
	}

	row.Slope, row.Intercept, err = trend.FitLine(points)
	return row, err == nil
}
