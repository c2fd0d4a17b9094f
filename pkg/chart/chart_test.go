package chart

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

func sampleCounts() []climate.MonthlyCount {
	var counts []climate.MonthlyCount
	for year := 1980; year < 1992; year++ {
		counts = append(counts,
			climate.MonthlyCount{Year: year, Month: 1, Count: 15 - (year-1980)/2},
			climate.MonthlyCount{Year: year, Month: 3, Count: 12 + year%3},
			climate.MonthlyCount{Year: year, Month: 11, Count: 8},
		)
	}
	// A month seen in a single year only
	counts = append(counts, climate.MonthlyCount{Year: 1985, Month: 5, Count: 1})
	return counts
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestHeatmap(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"heatmap_col.png", "heatmap_col.svg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Heatmap(sampleCounts(), path, DefaultStyle()); err != nil {
				t.Fatalf("Heatmap: %v", err)
			}
			assertFile(t, path)
		})
	}
}

func TestHeatmapSingleYearAllZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.png")
	counts := []climate.MonthlyCount{{Year: 2000, Month: 2, Count: 0}}
	if err := Heatmap(counts, path, DefaultStyle()); err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	assertFile(t, path)
}

func TestMonthlyCharts(t *testing.T) {
	dir := t.TempDir()
	paths, err := MonthlyCharts(sampleCounts(), dir, DefaultStyle())
	if err != nil {
		t.Fatalf("MonthlyCharts: %v", err)
	}
	if len(paths) != 12 {
		t.Fatalf("wrote %d charts, expected 12", len(paths))
	}
	for i, path := range paths {
		if filepath.Base(path) != "month"+strconv.Itoa(i+1)+"_plot.png" {
			t.Errorf("unexpected chart name %s", path)
		}
		assertFile(t, path)
	}
}

func TestMonthlyGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "month_plots_single.png")
	if err := MonthlyGrid(sampleCounts(), path, DefaultStyle()); err != nil {
		t.Fatalf("MonthlyGrid: %v", err)
	}
	assertFile(t, path)
}

func TestTrend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yeartrendfig.png")
	fit, err := Trend(sampleCounts(), path, 5, DefaultStyle())
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	assertFile(t, path)

	if fit.Window != 5 || len(fit.MovingAverage) != 12 {
		t.Errorf("fit window %d with %d averages", fit.Window, len(fit.MovingAverage))
	}
	if fit.Slope >= 0 {
		t.Errorf("Slope = %v, expected a declining trend", fit.Slope)
	}
	if math.IsNaN(fit.RSquared) || fit.RSquared < 0 || fit.RSquared > 1 {
		t.Errorf("RSquared = %v", fit.RSquared)
	}
}

func TestTrendDegenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.png")
	counts := []climate.MonthlyCount{
		{Year: 2000, Month: 1, Count: 4},
		{Year: 2001, Month: 1, Count: 4},
	}
	_, err := Trend(counts, path, 2, DefaultStyle())
	if !errors.Is(err, trend.ErrDegenerateInput) {
		t.Fatalf("Trend error = %v, expected ErrDegenerateInput", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no chart should be written for a degenerate series")
	}
}

func TestNoData(t *testing.T) {
	dir := t.TempDir()
	style := DefaultStyle()

	if err := Heatmap(nil, filepath.Join(dir, "h.png"), style); !errors.Is(err, ErrNoData) {
		t.Errorf("Heatmap error = %v", err)
	}
	if _, err := MonthlyCharts(nil, dir, style); !errors.Is(err, ErrNoData) {
		t.Errorf("MonthlyCharts error = %v", err)
	}
	if err := MonthlyGrid(nil, filepath.Join(dir, "g.png"), style); !errors.Is(err, ErrNoData) {
		t.Errorf("MonthlyGrid error = %v", err)
	}
	if _, err := Trend(nil, filepath.Join(dir, "t.png"), 3, style); !errors.Is(err, ErrNoData) {
		t.Errorf("Trend error = %v", err)
	}
}

func TestUnknownFormat(t *testing.T) {
	err := Heatmap(sampleCounts(), filepath.Join(t.TempDir(), "chart.bmp"), DefaultStyle())
	if err == nil || !strings.Contains(err.Error(), "bmp") {
		t.Errorf("expected an unsupported format error, got %v", err)
	}
}

func TestGradient(t *testing.T) {
	g := newGradient(DefaultStyle().Gradient, 0, 10)

	lowest, err := g.At(0)
	if err != nil {
		t.Fatal(err)
	}
	if c := color.NRGBAModel.Convert(lowest).(color.NRGBA); c.R != 0xff || c.G != 0xff || c.B != 0xff {
		t.Errorf("At(0) = %v, expected white", c)
	}

	middle, _ := g.At(5)
	if c := color.NRGBAModel.Convert(middle).(color.NRGBA); c.R != 0x9c || c.G != 0xbd || c.B != 0xc0 {
		t.Errorf("At(5) = %v, expected #9CBDC0", c)
	}

	highest, _ := g.At(10)
	if c := color.NRGBAModel.Convert(highest).(color.NRGBA); c.R != 0x0a || c.G != 0x33 || c.B != 0x41 {
		t.Errorf("At(10) = %v, expected #0A3341", c)
	}

	if _, err := g.At(11); err == nil {
		t.Error("At above max should fail")
	}
	if n := len(g.Palette(1000).Colors()); n != 1000 {
		t.Errorf("Palette(1000) has %d colours", n)
	}
}

func TestYearTicks(t *testing.T) {
	ticks := yearTicks{}.Ticks(1949.5, 2021.5)
	var labels []string
	for _, tk := range ticks {
		if tk.Label != "" {
			labels = append(labels, tk.Label)
		}
		if tk.Value != math.Trunc(tk.Value) {
			t.Errorf("tick at non-integer year %v", tk.Value)
		}
	}
	if len(labels) == 0 || len(labels) > 10 {
		t.Fatalf("got %d labels: %v", len(labels), labels)
	}
	if labels[0] != "1950" {
		t.Errorf("first label = %s, expected 1950", labels[0])
	}
}
