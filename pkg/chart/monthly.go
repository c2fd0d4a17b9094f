package chart

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

// MonthlyCharts writes one year-vs-count scatter with a fitted line for each
// calendar month into dir, named month1_plot.<format> through
// month12_plot.<format>. It returns the paths written.
func MonthlyCharts(counts []climate.MonthlyCount, dir string, style Style) ([]string, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	var paths []string
	for month := 1; month <= 12; month++ {
		p, err := monthPlot(counts, month, style)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, fmt.Sprintf("month%d_plot.%s", month, style.Format))
		if err := save(path, style.MonthSize, p.Draw); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// MonthlyGrid draws the twelve monthly panels in a single 4x3 grid image
func MonthlyGrid(counts []climate.MonthlyCount, path string, style Style) error {
	if len(counts) == 0 {
		return ErrNoData
	}

	const rows, cols = 4, 3
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for c := range plots[r] {
			p, err := monthPlot(counts, r*cols+c+1, style)
			if err != nil {
				return err
			}
			plots[r][c] = p
		}
	}

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	return save(path, style.GridSize, func(dc draw.Canvas) {
		canvases := plot.Align(plots, tiles, dc)
		for r := range plots {
			for c := range plots[r] {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	})
}

// monthPlot builds the scatter and least squares line for one calendar month.
// Months with no data give an empty panel; months with fewer than two distinct
// years are drawn without a line.
func monthPlot(counts []climate.MonthlyCount, month int, style Style) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Freeze-Thaw Events in Month %d", month)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Count"
	p.X.Tick.Marker = yearTicks{}

	points := climate.MonthPoints(counts, month)
	if len(points) == 0 {
		return p, nil
	}

	s, err := plotter.NewScatter(toXYs(points))
	if err != nil {
		return nil, fmt.Errorf("failed to plot month %d: %w", month, err)
	}
	s.GlyphStyle.Color = style.Point
	s.GlyphStyle.Radius = style.PointRadius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)

	slope, intercept, err := trend.FitLine(points)
	if err != nil {
		return p, nil
	}

	first, last := points[0].X, points[len(points)-1].X
	l, err := plotter.NewLine(plotter.XYs{
		{X: first, Y: intercept + slope*first},
		{X: last, Y: intercept + slope*last},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plot month %d fit: %w", month, err)
	}
	l.LineStyle.Color = style.Average
	l.LineStyle.Width = style.LineWidth
	p.Add(l)

	return p, nil
}

func toXYs(points []trend.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	return xys
}
