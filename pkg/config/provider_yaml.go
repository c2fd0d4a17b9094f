package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// ConfigYAML is the on-disk layout of the configuration file
type ConfigYAML struct {
	Input   string      `yaml:"input"`
	Output  string      `yaml:"output,omitempty"`
	Dense   bool        `yaml:"dense,omitempty"`
	LogFile string      `yaml:"log_file,omitempty"`
	Charts  ChartsYAML  `yaml:"charts,omitempty"`
	Archive ArchiveYAML `yaml:"archive,omitempty"`
}

// ChartsYAML is the charts section of the configuration file
type ChartsYAML struct {
	Directory   string `yaml:"directory,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Window      int    `yaml:"window,omitempty"`
	Heatmap     bool   `yaml:"heatmap,omitempty"`
	Monthly     bool   `yaml:"monthly,omitempty"`
	MonthlyGrid bool   `yaml:"monthly_grid,omitempty"`
	Trend       bool   `yaml:"trend,omitempty"`
}

// ArchiveYAML is the archive section of the configuration file
type ArchiveYAML struct {
	Path string `yaml:"path,omitempty"`
}

// LoadConfig loads the configuration from the YAML file and applies defaults.
// It does not validate; callers may still override fields from flags.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig ConfigYAML
	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Input:   yamlConfig.Input,
		Output:  yamlConfig.Output,
		Dense:   yamlConfig.Dense,
		LogFile: yamlConfig.LogFile,
		Charts: ChartsData{
			Directory:   yamlConfig.Charts.Directory,
			Format:      yamlConfig.Charts.Format,
			Window:      yamlConfig.Charts.Window,
			Heatmap:     yamlConfig.Charts.Heatmap,
			Monthly:     yamlConfig.Charts.Monthly,
			MonthlyGrid: yamlConfig.Charts.MonthlyGrid,
			Trend:       yamlConfig.Charts.Trend,
		},
		Archive: ArchiveData{
			Path: yamlConfig.Archive.Path,
		},
	}
	config.ApplyDefaults()

	return config, nil
}
