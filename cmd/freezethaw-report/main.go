package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/chrissnell/freezethaw/internal/app"
	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

// YearRow is one line of the annual table
type YearRow struct {
	Year          int     `dataframe:"year"`
	Days          int     `dataframe:"freeze_thaw_days"`
	MovingAverage float64 `dataframe:"moving_average"`
	Trendline     float64 `dataframe:"trendline"`
	Residual      float64 `dataframe:"residual"`
}

func main() {
	// Command line flags
	var (
		countsFile = flag.String("counts", "counts.csv", "Monthly counts table written by freezethaw")
		window     = flag.Int("window", 10, "Moving average window in years")
		csvOutput  = flag.String("csv", "", "Optional CSV output file path for the annual table")
	)
	flag.Parse()

	counts, err := climate.LoadCounts(*countsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading counts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Freeze-Thaw Trend Report\n")
	fmt.Printf("========================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Counts Table: %s\n", *countsFile)
	fmt.Printf("  Moving Average Window: %d years\n\n", *window)

	points := climate.YearlyPoints(counts)
	fit, err := trend.Fit(points, *window)
	if err != nil {
		if errors.Is(err, trend.ErrDegenerateInput) {
			fmt.Fprintf(os.Stderr, "Error: cannot fit a trend to %d years of data: %v\n", len(points), err)
		} else {
			fmt.Fprintf(os.Stderr, "Error fitting trend: %v\n", err)
		}
		os.Exit(1)
	}

	df := annualFrame(points, fit)
	if df.Err != nil {
		fmt.Fprintf(os.Stderr, "Error building annual table: %v\n", df.Err)
		os.Exit(1)
	}

	displayAnnual(df)
	displayTrend(df, fit)
	displayMonthly(counts)

	if *csvOutput != "" {
		if err := exportCSV(*csvOutput, df); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annual table exported to %s\n", *csvOutput)
	}
}

func annualFrame(points []trend.Point, fit *trend.Result) dataframe.DataFrame {
	rows := make([]YearRow, len(points))
	for i, p := range points {
		ma := math.NaN()
		if fit.MovingAverage[i].Valid {
			ma = fit.MovingAverage[i].Float64
		}
		rows[i] = YearRow{
			Year:          int(p.X),
			Days:          int(p.Y),
			MovingAverage: ma,
			Trendline:     fit.Trendline[i],
			Residual:      p.Y - fit.Trendline[i],
		}
	}
	return dataframe.LoadStructs(rows)
}

func displayAnnual(df dataframe.DataFrame) {
	fmt.Printf("Annual Freeze-Thaw Days\n")
	fmt.Printf("=======================\n\n")

	records := df.Records()
	fmt.Printf("%6s | %6s | %10s | %9s | %9s\n", "Year", "Days", "Moving Avg", "Trendline", "Residual")
	fmt.Printf("-------+--------+------------+-----------+----------\n")
	for _, r := range records[1:] {
		ma := r[2]
		if ma == "NaN" {
			ma = "-"
		}
		fmt.Printf("%6s | %6s | %10s | %9s | %9s\n", r[0], r[1], shorten(ma), shorten(r[3]), shorten(r[4]))
	}

	days := df.Col("freeze_thaw_days")
	fmt.Printf("\n  Years: %d   Mean: %.1f   Std Dev: %.1f   Min: %.0f   Max: %.0f\n\n",
		df.Nrow(), days.Mean(), days.StdDev(), days.Min(), days.Max())
}

func displayTrend(df dataframe.DataFrame, fit *trend.Result) {
	fmt.Printf("Annual Trend\n")
	fmt.Printf("============\n\n")

	fmt.Printf("Model equation:\n  %s\n\n", strings.ReplaceAll(fit.Equation(), "\n", "\n  "))
	fmt.Printf("  Change per decade: %+.2f days\n", fit.Slope*10)

	years := df.Col("year")
	first, last := years.Min(), years.Max()
	fmt.Printf("  Fitted %.0f: %.1f days\n", first, fit.Predict(first))
	fmt.Printf("  Fitted %.0f: %.1f days\n", last, fit.Predict(last))

	if fit.RSquared < 0.3 {
		fmt.Printf("\n  ⚠ WARNING: Low R² (%.4f) - year-to-year variation dominates the trend\n", fit.RSquared)
	} else if fit.RSquared < 0.7 {
		fmt.Printf("\n  ℹ Moderate fit (R²=%.4f)\n", fit.RSquared)
	} else {
		fmt.Printf("\n  ✓ Strong fit (R²=%.4f)\n", fit.RSquared)
	}
	fmt.Println()
}

func displayMonthly(counts []climate.MonthlyCount) {
	fmt.Printf("Monthly Trends\n")
	fmt.Printf("==============\n\n")

	fmt.Printf("%-5s | %5s | %10s | %8s\n", "Month", "Years", "Days/Decade", "R²")
	fmt.Printf("------+-------+-------------+---------\n")

	for _, row := range app.Trends(counts) {
		if row.Scope == "annual" {
			continue
		}
		month, _ := strconv.Atoi(strings.TrimPrefix(row.Scope, "month-"))

		r2 := "-"
		if row.RSquared.Valid {
			r2 = fmt.Sprintf("%.4f", row.RSquared.Float64)
		}
		fmt.Printf("%-5s | %5d | %+11.2f | %8s\n", time.Month(month).String()[:3], row.Points, row.Slope*10, r2)
	}
	fmt.Println()
}

func shorten(value string) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%.2f", f)
}

func exportCSV(filename string, df dataframe.DataFrame) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return df.WriteCSV(file)
}
