// Package trend fits straight lines and trailing moving averages to short
// yearly series, such as the number of freeze-thaw days per year.
package trend

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDegenerateInput is returned when a fit is requested for data that cannot
	// define it: fewer than two distinct X values, or Y values with no variance.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidWindow is returned for a moving average window smaller than one.
	ErrInvalidWindow = errors.New("moving average window must be positive")
)

// Point is a single (x, y) observation
type Point struct {
	X float64
	Y float64
}

// NullFloat64 is a float that may be absent. Moving average positions inside
// the warm-up region are absent rather than zero.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Result holds a least-squares fit together with the moving average of the
// same series. MovingAverage and Trendline are aligned with the input points.
type Result struct {
	Slope         float64
	Intercept     float64
	RSquared      float64
	Window        int
	MovingAverage []NullFloat64
	Trendline     []float64
}

// Predict evaluates the fitted line at x
func (r *Result) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Equation formats the fitted line and its R² for chart annotations
func (r *Result) Equation() string {
	return fmt.Sprintf("y = %.2fx + %.2f\nR² = %.2f", r.Slope, r.Intercept, r.RSquared)
}

// Fit computes the ordinary least squares line through points, its coefficient
// of determination and a trailing moving average over the Y values.
//
// Points are used in the order given; callers that want a time-ordered moving
// average must sort by X first.
func Fit(points []Point, window int) (*Result, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	slope, intercept, err := FitLine(points)
	if err != nil {
		return nil, err
	}

	xs, ys := split(points)
	if !varies(ys) {
		return nil, fmt.Errorf("%w: all %d y values are equal, R² is undefined", ErrDegenerateInput, len(ys))
	}

	ma, err := MovingAverage(ys, window)
	if err != nil {
		return nil, err
	}

	trendline := make([]float64, len(xs))
	for i, x := range xs {
		trendline[i] = intercept + slope*x
	}

	return &Result{
		Slope:         slope,
		Intercept:     intercept,
		RSquared:      stat.RSquared(xs, ys, nil, intercept, slope),
		Window:        window,
		MovingAverage: ma,
		Trendline:     trendline,
	}, nil
}

// FitLine returns the least squares slope and intercept for points. Unlike Fit
// it accepts a series with constant Y, which yields a flat line. Every
// coordinate must be finite.
func FitLine(points []Point) (slope, intercept float64, err error) {
	xs, ys := split(points)
	if !finite(xs) || !finite(ys) {
		return 0, 0, fmt.Errorf("%w: points include NaN or infinite values", ErrDegenerateInput)
	}
	if !varies(xs) {
		return 0, 0, fmt.Errorf("%w: need at least 2 distinct x values, got %d points", ErrDegenerateInput, len(points))
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept, nil
}

// MovingAverage returns the trailing mean of y over window values. The first
// window-1 positions are absent; if window exceeds len(y) every position is.
func MovingAverage(y []float64, window int) ([]NullFloat64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	ma := make([]NullFloat64, len(y))
	for i := window - 1; i < len(y); i++ {
		ma[i] = NullFloat64{
			Float64: stat.Mean(y[i-window+1:i+1], nil),
			Valid:   true,
		}
	}
	return ma, nil
}

func split(points []Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// varies reports whether values holds at least two distinct numbers. Exact
// comparison is used; a computed variance can come out slightly above zero for
// identical inputs.
func varies(values []float64) bool {
	for _, v := range values[min(1, len(values)):] {
		if v != values[0] {
			return true
		}
	}
	return false
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
