// Package chart renders freeze-thaw counts as image files. Every renderer takes
// an explicit Style; nothing here keeps drawing state between calls.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a chart is requested for an empty counts table
var ErrNoData = errors.New("no freeze-thaw counts to plot")

// Style carries the colours and sizes used by the renderers
type Style struct {
	// Gradient stops for the heatmap, from lowest to highest count
	Gradient []color.Color
	// HeatmapBins is the number of discrete colours the gradient is sampled into
	HeatmapBins int

	Point     color.Color // scatter markers
	Average   color.Color // moving average line
	Trendline color.Color // fitted line

	PointRadius vg.Length
	LineWidth   vg.Length

	// Format is the image format used when a renderer chooses its own file
	// names: png, svg, pdf, jpg, tiff or eps.
	Format string

	HeatmapSize Size
	MonthSize   Size
	GridSize    Size
	TrendSize   Size
}

// Size is an image width and height
type Size struct {
	Width  vg.Length
	Height vg.Length
}

var (
	white     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	lightTeal = color.RGBA{R: 0x9c, G: 0xbd, B: 0xc0, A: 0xff}
	deepTeal  = color.RGBA{R: 0x0a, G: 0x33, B: 0x41, A: 0xff}
	ochre     = color.RGBA{R: 0xad, G: 0x83, B: 0x2d, A: 0xff}
)

// DefaultStyle returns the house palette: white through light teal to deep
// teal, with an ochre trendline.
func DefaultStyle() Style {
	return Style{
		Gradient:    []color.Color{white, lightTeal, deepTeal},
		HeatmapBins: 1000,
		Point:       lightTeal,
		Average:     deepTeal,
		Trendline:   ochre,
		PointRadius: vg.Points(3),
		LineWidth:   vg.Points(2),
		Format:      "png",
		HeatmapSize: Size{Width: 10 * vg.Inch, Height: 10 * vg.Inch},
		MonthSize:   Size{Width: 7.5 * vg.Inch, Height: 5 * vg.Inch},
		GridSize:    Size{Width: 15 * vg.Inch, Height: 10 * vg.Inch},
		TrendSize:   Size{Width: 10 * vg.Inch, Height: 6 * vg.Inch},
	}
}

// save renders onto a canvas of the given size and writes it to path, in the
// format named by the path's extension.
func save(path string, size Size, render func(dc draw.Canvas)) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	c, err := draw.NewFormattedCanvas(size.Width, size.Height, format)
	if err != nil {
		return fmt.Errorf("failed to create %q canvas for %s: %w", format, path, err)
	}

	render(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close chart %s: %w", path, err)
	}
	return nil
}
