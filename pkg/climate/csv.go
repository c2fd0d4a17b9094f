package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Column names of the daily input and the monthly counts table
const (
	ColumnTime   = "time"
	ColumnTasMin = "tasmin"
	ColumnTasMax = "tasmax"

	ColumnYear  = "year"
	ColumnMonth = "month"
	ColumnCount = "count"
)

// Layouts accepted for the time column, tried in order
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02Z07:00",
	"2006/01/02",
}

// ParseError describes a row of an input table that could not be parsed.
// Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Value == "" && e.Column != "" {
		return fmt.Sprintf("line %d: column %q: %v", e.Line, e.Column, e.Err)
	}
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errMissingColumn = errors.New("required column not found in header")
	errShortRow      = errors.New("row has fewer fields than the header")
	errBadTime       = errors.New("unrecognized date/time format")
	errMonthRange    = errors.New("month must be between 1 and 12")
	errNegative      = errors.New("count must not be negative")
)

// LoadDaily reads a daily record CSV from filename
func LoadDaily(filename string) ([]DailyRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open daily records %s: %w", filename, err)
	}
	defer file.Close()

	records, err := ReadDaily(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily records %s: %w", filename, err)
	}
	return records, nil
}

// ReadDaily reads daily records from r. The header must name the time, tasmin
// and tasmax columns; they may appear in any order among other columns. Blank,
// NA and NaN temperatures load as NaN. Any other malformed value aborts the
// read with a *ParseError.
func ReadDaily(r io.Reader) ([]DailyRecord, error) {
	reader := newReader(r)

	idx, err := readHeader(reader, ColumnTime, ColumnTasMin, ColumnTasMax)
	if err != nil {
		return nil, err
	}

	var records []DailyRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}
		if len(row) <= maxIndex(idx) {
			return nil, &ParseError{Line: line, Err: errShortRow}
		}

		date, err := parseTime(row[idx[0]])
		if err != nil {
			return nil, &ParseError{Line: line, Column: ColumnTime, Value: row[idx[0]], Err: err}
		}
		tasmin, err := parseTemperature(row[idx[1]])
		if err != nil {
			return nil, &ParseError{Line: line, Column: ColumnTasMin, Value: row[idx[1]], Err: err}
		}
		tasmax, err := parseTemperature(row[idx[2]])
		if err != nil {
			return nil, &ParseError{Line: line, Column: ColumnTasMax, Value: row[idx[2]], Err: err}
		}

		records = append(records, DailyRecord{Date: date, TasMin: tasmin, TasMax: tasmax})
	}

	return records, nil
}

// SaveCounts writes counts to filename as year,month,count
func SaveCounts(filename string, counts []MonthlyCount) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create counts file %s: %w", filename, err)
	}

	if err := WriteCounts(file, counts); err != nil {
		file.Close()
		return fmt.Errorf("failed to write counts file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close counts file %s: %w", filename, err)
	}
	return nil
}

// WriteCounts writes counts to w as year,month,count with a header row
func WriteCounts(w io.Writer, counts []MonthlyCount) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{ColumnYear, ColumnMonth, ColumnCount}); err != nil {
		return err
	}
	for _, c := range counts {
		record := []string{
			strconv.Itoa(c.Year),
			strconv.Itoa(c.Month),
			strconv.Itoa(c.Count),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// LoadCounts reads a counts table from filename
func LoadCounts(filename string) ([]MonthlyCount, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open counts file %s: %w", filename, err)
	}
	defer file.Close()

	counts, err := ReadCounts(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read counts file %s: %w", filename, err)
	}
	return counts, nil
}

// ReadCounts reads a year,month,count table from r in file order
func ReadCounts(r io.Reader) ([]MonthlyCount, error) {
	reader := newReader(r)

	idx, err := readHeader(reader, ColumnYear, ColumnMonth, ColumnCount)
	if err != nil {
		return nil, err
	}

	counts := []MonthlyCount{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}
		if len(row) <= maxIndex(idx) {
			return nil, &ParseError{Line: line, Err: errShortRow}
		}

		var values [3]int
		for i, column := range []string{ColumnYear, ColumnMonth, ColumnCount} {
			raw := strings.TrimSpace(row[idx[i]])
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &ParseError{Line: line, Column: column, Value: raw, Err: err}
			}
			values[i] = v
		}

		c := MonthlyCount{Year: values[0], Month: values[1], Count: values[2]}
		if c.Month < 1 || c.Month > 12 {
			return nil, &ParseError{Line: line, Column: ColumnMonth, Value: row[idx[1]], Err: errMonthRange}
		}
		if c.Count < 0 {
			return nil, &ParseError{Line: line, Column: ColumnCount, Value: row[idx[2]], Err: errNegative}
		}
		counts = append(counts, c)
	}

	return counts, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return reader
}

// readHeader returns the positions of the named columns in the header row
func readHeader(reader *csv.Reader, columns ...string) ([]int, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Column: columns[0], Err: errMissingColumn}
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.Trim(h, "\"\ufeff")))
		if _, seen := positions[h]; !seen {
			positions[h] = i
		}
	}

	idx := make([]int, len(columns))
	for i, column := range columns {
		p, ok := positions[column]
		if !ok {
			return nil, &ParseError{Line: 1, Column: column, Err: errMissingColumn}
		}
		idx[i] = p
	}
	return idx, nil
}

func readError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return err
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadTime
}

func parseTemperature(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(raw, 64)
}

func blank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func maxIndex(idx []int) int {
	highest := 0
	for _, i := range idx {
		highest = max(highest, i)
	}
	return highest
}
