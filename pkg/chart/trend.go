package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

// Trend sums counts by year and draws the yearly totals with a window-year
// moving average, the least squares trendline and its equation. It returns the
// fit it annotated. A series that cannot be fitted is an error wrapping
// trend.ErrDegenerateInput; no chart is written in that case.
func Trend(counts []climate.MonthlyCount, path string, window int, style Style) (*trend.Result, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	points := climate.YearlyPoints(counts)
	fit, err := trend.Fit(points, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fit yearly trend: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Trend of Freeze Thaw Days"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Count of Freeze Thaw Days"
	p.X.Tick.Marker = yearTicks{}
	p.Legend.Top = true

	s, err := plotter.NewScatter(toXYs(points))
	if err != nil {
		return nil, fmt.Errorf("failed to plot yearly totals: %w", err)
	}
	s.GlyphStyle.Color = style.Point
	s.GlyphStyle.Radius = style.PointRadius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	p.Legend.Add("Freeze Thaw Days", s)

	// Only the positions past the warm-up region are drawn
	var average plotter.XYs
	for i, v := range fit.MovingAverage {
		if v.Valid {
			average = append(average, plotter.XY{X: points[i].X, Y: v.Float64})
		}
	}
	if len(average) > 0 {
		l, err := plotter.NewLine(average)
		if err != nil {
			return nil, fmt.Errorf("failed to plot moving average: %w", err)
		}
		l.LineStyle.Color = style.Average
		l.LineStyle.Width = style.LineWidth
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%d-year Moving Average", window), l)
	}

	line := make(plotter.XYs, len(points))
	for i, pt := range points {
		line[i] = plotter.XY{X: pt.X, Y: fit.Trendline[i]}
	}
	tl, err := plotter.NewLine(line)
	if err != nil {
		return nil, fmt.Errorf("failed to plot trendline: %w", err)
	}
	tl.LineStyle.Color = style.Trendline
	tl.LineStyle.Width = style.LineWidth
	p.Add(tl)
	p.Legend.Add("Linear Trendline", tl)

	top := points[0].Y
	for _, pt := range points {
		top = max(top, pt.Y)
	}
	eq, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: points[0].X, Y: top}},
		Labels: []string{fit.Equation()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to annotate trend: %w", err)
	}
	for i := range eq.TextStyle {
		eq.TextStyle[i].YAlign = text.YTop
	}
	p.Add(eq)

	if err := save(path, style.TrendSize, p.Draw); err != nil {
		return nil, err
	}
	return fit, nil
}
