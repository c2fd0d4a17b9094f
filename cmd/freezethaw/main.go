package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/freezethaw/internal/app"
	"github.com/chrissnell/freezethaw/internal/constants"
	"github.com/chrissnell/freezethaw/internal/log"
	"github.com/chrissnell/freezethaw/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration (default "+constants.DefaultConfigFile+" if present)")
	input := flag.String("input", "", "Daily record CSV with time, tasmin and tasmax columns (overrides config)")
	output := flag.String("output", "", "Where to write the year,month,count table (overrides config)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("freezethaw %s\n", constants.Version)
		os.Exit(0)
	}

	// Load configuration
	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfgData.Input = *input
	}
	if *output != "" {
		cfgData.Output = *output
	}

	// Set up logging
	if err := log.Init(*debug, cfgData.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfgData.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("freezethaw failed: %v", err)
	}
}

// loadConfig reads cfgFile, or the default file when none was named. Without
// either, the built-in defaults are used and -input must be given.
func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		if _, err := os.Stat(constants.DefaultConfigFile); err != nil {
			return config.Default(), nil
		}
		cfgFile = constants.DefaultConfigFile
	}

	filename, _ := filepath.Abs(cfgFile)
	provider := config.NewYAMLProvider(filename)

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
