package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tj/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "freezethaw.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestYAMLProvider(t *testing.T) {
	path := writeConfig(t, `
input: ahccd.csv
output: out/counts.csv
dense: true
charts:
  directory: charts
  format: SVG
  window: 5
  heatmap: true
  trend: true
archive:
  path: runs.db
`)

	cfg, err := NewYAMLProvider(path).LoadConfig()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "ahccd.csv", cfg.Input)
	assert.Equal(t, "out/counts.csv", cfg.Output)
	assert.True(t, cfg.Dense)
	assert.Equal(t, "charts", cfg.Charts.Directory)
	assert.Equal(t, "svg", cfg.Charts.Format)
	assert.Equal(t, 5, cfg.Charts.Window)
	assert.True(t, cfg.Charts.Heatmap)
	assert.False(t, cfg.Charts.Monthly)
	assert.False(t, cfg.Charts.MonthlyGrid)
	assert.True(t, cfg.Charts.Trend)
	assert.True(t, cfg.AnyCharts())
	assert.Equal(t, "runs.db", cfg.Archive.Path)
}

func TestYAMLProviderDefaults(t *testing.T) {
	cfg, err := NewYAMLProvider(writeConfig(t, "input: daily.csv\n")).LoadConfig()
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultChartFormat, cfg.Charts.Format)
	assert.Equal(t, DefaultWindow, cfg.Charts.Window)
	assert.False(t, cfg.AnyCharts())
	assert.Equal(t, "", cfg.Archive.Path)
}

func TestYAMLProviderErrors(t *testing.T) {
	_, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig()
	assert.True(t, os.IsNotExist(err))

	_, err = NewYAMLProvider(writeConfig(t, "input: a.csv\nthreshold: 2\n")).LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "input file is required")

	cfg.Input = "daily.csv"
	cfg.Charts.Window = -1
	cfg.Charts.Format = "bmp"
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "window must be positive")
	assert.Contains(t, err.Error(), `unsupported chart format "bmp"`)
}
