package chart

import (
	"math"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/freezethaw/pkg/climate"
)

// countGrid adapts a climate.Matrix to plotter.GridXYZ. Columns are months,
// rows are years. X and Y extrapolate past the grid so that single-row or
// single-column matrices still get a cell size.
type countGrid struct {
	m climate.Matrix
}

func (g countGrid) Dims() (c, r int)   { return 12, len(g.m.Years) }
func (g countGrid) Z(c, r int) float64 { return g.m.Counts[r][c] }
func (g countGrid) X(c int) float64    { return float64(c + 1) }
func (g countGrid) Y(r int) float64    { return float64(g.m.Years[0] + r) }

const colorBarWidth = 1.2 * vg.Inch

// Heatmap draws a year by month heatmap of counts with a colour bar and writes
// it to path. Months with no freeze-thaw days are drawn as zero.
func Heatmap(counts []climate.MonthlyCount, path string, style Style) error {
	if len(counts) == 0 {
		return ErrNoData
	}

	m := climate.Pivot(counts)
	lo, hi := 0.0, m.Max()
	if hi <= lo {
		hi = lo + 1
	}
	cmap := newGradient(style.Gradient, lo, hi)

	hm := plotter.NewHeatMap(countGrid{m: m}, cmap.Palette(style.HeatmapBins))
	hm.Min, hm.Max = lo, hi

	p := plot.New()
	p.Title.Text = "Freeze-Thaw Events per Year per Month"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Year"
	p.X.Tick.Marker = monthTicks()
	p.Y.Tick.Marker = yearTicks{}
	p.Add(hm)

	cb := plot.New()
	cb.HideX()
	cb.Y.Label.Text = "Count"
	cb.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: style.HeatmapBins})

	return save(path, style.HeatmapSize, func(dc draw.Canvas) {
		width := dc.Max.X - dc.Min.X
		p.Draw(draw.Crop(dc, 0, -colorBarWidth, 0, 0))
		cb.Draw(draw.Crop(dc, width-colorBarWidth+vg.Points(10), 0, vg.Inch, -vg.Inch))
	})
}

func monthTicks() plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 12)
	for m := 1; m <= 12; m++ {
		ticks[m-1] = plot.Tick{Value: float64(m), Label: time.Month(m).String()[:3]}
	}
	return ticks
}

// yearTicks labels whole years, thinning the labels on long records
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || hi < lo {
		return nil
	}

	step := 1
	for _, s := range []int{1, 2, 5, 10, 20, 25, 50, 100, 250, 500, 1000} {
		step = s
		if (hi-lo)/float64(s) <= 10 {
			break
		}
	}

	var ticks []plot.Tick
	for y := int(math.Ceil(lo)); float64(y) <= hi; y++ {
		switch {
		case y%step == 0:
			ticks = append(ticks, plot.Tick{Value: float64(y), Label: strconv.Itoa(y)})
		case step <= 5:
			ticks = append(ticks, plot.Tick{Value: float64(y)})
		}
	}
	return ticks
}
