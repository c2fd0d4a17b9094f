// Package climate turns a single station's daily temperature series into
// monthly counts of freeze-thaw days and reshapes those counts for plotting
// and trend fitting.
package climate

import (
	"math"
	"sort"
	"time"

	"github.com/chrissnell/freezethaw/pkg/trend"
)

// FreezingPoint is the threshold, in °C, that a freeze-thaw day crosses
const FreezingPoint = 0.0

// DailyRecord holds one day's minimum and maximum temperature in °C
type DailyRecord struct {
	Date   time.Time
	TasMin float64
	TasMax float64
}

// MonthlyCount is the number of freeze-thaw days seen in one calendar month
type MonthlyCount struct {
	Year  int
	Month int
	Count int
}

type monthKey struct {
	year  int
	month int
}

// IsFreezeThaw reports whether the day's minimum is below freezing and its
// maximum above it. Both comparisons are strict and a missing (NaN)
// temperature never qualifies.
func IsFreezeThaw(r DailyRecord) bool {
	return r.TasMin < FreezingPoint && r.TasMax > FreezingPoint
}

// Aggregate counts freeze-thaw days per (year, month). Months without a
// qualifying day are omitted rather than reported as zero. The result is
// sorted by year, then month.
func Aggregate(records []DailyRecord) []MonthlyCount {
	counts := make(map[monthKey]int)
	for _, r := range records {
		if !IsFreezeThaw(r) {
			continue
		}
		counts[monthKey{r.Date.Year(), int(r.Date.Month())}]++
	}

	result := make([]MonthlyCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, MonthlyCount{Year: k.year, Month: k.month, Count: n})
	}
	sortCounts(result)
	return result
}

// AggregateDense is Aggregate with explicit zero rows for every month between
// the earliest and latest record, inclusive.
func AggregateDense(records []DailyRecord) []MonthlyCount {
	if len(records) == 0 {
		return []MonthlyCount{}
	}

	first, last := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}

	sparse := make(map[monthKey]int)
	for _, c := range Aggregate(records) {
		sparse[monthKey{c.Year, c.Month}] = c.Count
	}

	var result []MonthlyCount
	cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		k := monthKey{cur.Year(), int(cur.Month())}
		result = append(result, MonthlyCount{Year: k.year, Month: k.month, Count: sparse[k]})
		cur = cur.AddDate(0, 1, 0)
	}
	return result
}

// Matrix is a dense year by month grid of counts. Row i holds Years[i];
// column j holds month j+1.
type Matrix struct {
	Years  []int
	Counts [][12]float64
}

// Pivot lays counts out as a Matrix covering every year from the earliest to
// the latest present. Missing (year, month) pairs are zero.
func Pivot(counts []MonthlyCount) Matrix {
	if len(counts) == 0 {
		return Matrix{}
	}

	minYear, maxYear := counts[0].Year, counts[0].Year
	for _, c := range counts {
		minYear = min(minYear, c.Year)
		maxYear = max(maxYear, c.Year)
	}

	m := Matrix{
		Years:  make([]int, maxYear-minYear+1),
		Counts: make([][12]float64, maxYear-minYear+1),
	}
	for i := range m.Years {
		m.Years[i] = minYear + i
	}
	for _, c := range counts {
		if c.Month < 1 || c.Month > 12 {
			continue
		}
		m.Counts[c.Year-minYear][c.Month-1] += float64(c.Count)
	}
	return m
}

// Max returns the largest count in the matrix, or zero for an empty one
func (m Matrix) Max() float64 {
	var highest float64
	for _, row := range m.Counts {
		for _, v := range row {
			highest = math.Max(highest, v)
		}
	}
	return highest
}

// YearlyPoints sums counts by year and returns them as (year, total) points
// sorted by year.
func YearlyPoints(counts []MonthlyCount) []trend.Point {
	totals := make(map[int]int)
	for _, c := range counts {
		totals[c.Year] += c.Count
	}

	points := make([]trend.Point, 0, len(totals))
	for year, total := range totals {
		points = append(points, trend.Point{X: float64(year), Y: float64(total)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points
}

// MonthPoints returns the (year, count) series for one calendar month, sorted
// by year.
func MonthPoints(counts []MonthlyCount, month int) []trend.Point {
	var points []trend.Point
	for _, c := range counts {
		if c.Month == month {
			points = append(points, trend.Point{X: float64(c.Year), Y: float64(c.Count)})
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points
}

func sortCounts(counts []MonthlyCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Year != counts[j].Year {
			return counts[i].Year < counts[j].Year
		}
		return counts[i].Month < counts[j].Month
	})
}
