package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// gradient is a palette.ColorMap that interpolates linearly in RGB space
// between evenly spaced colour stops.
type gradient struct {
	stops    []color.Color
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*gradient)(nil)

func newGradient(stops []color.Color, lo, hi float64) *gradient {
	return &gradient{stops: stops, min: lo, max: hi, alpha: 1}
}

func (g *gradient) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < g.min:
		return nil, palette.ErrUnderflow
	case v > g.max:
		return nil, palette.ErrOverflow
	}
	if g.max == g.min || len(g.stops) == 1 {
		return g.withAlpha(g.stops[0]), nil
	}

	pos := (v - g.min) / (g.max - g.min) * float64(len(g.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(g.stops)-1 {
		return g.withAlpha(g.stops[len(g.stops)-1]), nil
	}
	return g.withAlpha(lerp(g.stops[i], g.stops[i+1], pos-float64(i))), nil
}

func (g *gradient) Max() float64       { return g.max }
func (g *gradient) Min() float64       { return g.min }
func (g *gradient) SetMax(v float64)   { g.max = v }
func (g *gradient) SetMin(v float64)   { g.min = v }
func (g *gradient) Alpha() float64     { return g.alpha }
func (g *gradient) SetAlpha(a float64) { g.alpha = a }

func (g *gradient) Palette(n int) palette.Palette {
	colors := make(bins, n)
	for i := range colors {
		v := g.min
		if n > 1 {
			v += (g.max - g.min) * float64(i) / float64(n-1)
		}
		c, err := g.At(v)
		if err != nil {
			c = g.stops[len(g.stops)-1]
		}
		colors[i] = c
	}
	return colors
}

func (g *gradient) withAlpha(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(g.alpha * 255))
	return n
}

// bins is a fixed list of colours
type bins []color.Color

func (b bins) Colors() []color.Color { return b }

func lerp(a, b color.Color, t float64) color.Color {
	ca := color.NRGBAModel.Convert(a).(color.NRGBA)
	cb := color.NRGBAModel.Convert(b).(color.NRGBA)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return color.NRGBA{
		R: mix(ca.R, cb.R),
		G: mix(ca.G, cb.G),
		B: mix(ca.B, cb.B),
		A: mix(ca.A, cb.A),
	}
}
