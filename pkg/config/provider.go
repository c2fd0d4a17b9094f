// Package config loads the freezethaw pipeline configuration
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	// Input is the daily record CSV with time, tasmin and tasmax columns
	Input string `json:"input"`
	// Output is where the year,month,count table is written
	Output string `json:"output"`
	// Dense emits zero-count rows for every month spanned by the input
	Dense   bool        `json:"dense,omitempty"`
	LogFile string      `json:"log_file,omitempty"`
	Charts  ChartsData  `json:"charts"`
	Archive ArchiveData `json:"archive,omitempty"`
}

// ChartsData selects which charts are rendered and where
type ChartsData struct {
	Directory   string `json:"directory"`
	Format      string `json:"format"`
	Window      int    `json:"window"`
	Heatmap     bool   `json:"heatmap"`
	Monthly     bool   `json:"monthly"`
	MonthlyGrid bool   `json:"monthly_grid"`
	Trend       bool   `json:"trend"`
}

// ArchiveData configures the optional SQLite run archive. An empty Path
// disables archiving.
type ArchiveData struct {
	Path string `json:"path,omitempty"`
}

// Defaults applied to fields left empty
const (
	DefaultOutput      = "counts.csv"
	DefaultChartsDir   = "."
	DefaultChartFormat = "png"
	DefaultWindow      = 10
)

var chartFormats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// Default returns a configuration that aggregates only, with every default set
func Default() *ConfigData {
	return &ConfigData{
		Output: DefaultOutput,
		Charts: ChartsData{
			Directory: DefaultChartsDir,
			Format:    DefaultChartFormat,
			Window:    DefaultWindow,
		},
	}
}

// ApplyDefaults fills in empty fields
func (c *ConfigData) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Charts.Directory == "" {
		c.Charts.Directory = DefaultChartsDir
	}
	if c.Charts.Format == "" {
		c.Charts.Format = DefaultChartFormat
	}
	c.Charts.Format = strings.ToLower(strings.TrimPrefix(c.Charts.Format, "."))
	if c.Charts.Window == 0 {
		c.Charts.Window = DefaultWindow
	}
}

// AnyCharts reports whether at least one chart is enabled
func (c *ConfigData) AnyCharts() bool {
	return c.Charts.Heatmap || c.Charts.Monthly || c.Charts.MonthlyGrid || c.Charts.Trend
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *ConfigData) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, errors.New("input file is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output file is required"))
	}
	if c.Charts.Window < 1 {
		errs = append(errs, fmt.Errorf("charts.window must be positive, got %d", c.Charts.Window))
	}

	supported := false
	for _, f := range chartFormats {
		if c.Charts.Format == f {
			supported = true
			break
		}
	}
	if !supported {
		errs = append(errs, fmt.Errorf("unsupported chart format %q, use one of %s", c.Charts.Format, strings.Join(chartFormats, ", ")))
	}

	return errors.Join(errs...)
}
