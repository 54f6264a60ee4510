package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/agridash/internal/config"
	"github.com/KaramelBytes/agridash/internal/dataset"
	"github.com/KaramelBytes/agridash/internal/utils"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "agridash",
	Short: "Gangneung agriculture and climate dashboard",
	Long: `agridash loads yearly agriculture and climate indicators for Gangneung,
runs descriptive, regression, time series and model analyses over them and
serves the results as a web dashboard, Markdown reports or an XLSX workbook.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.agridash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = cfgpkg.Load(cfgFile)
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", cfgErr)
		setupLogging("info", "text")
		return
	}
	if logFormat != "" {
		cfg.LogFormat = strings.ToLower(logFormat)
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	setupLogging(level, cfg.LogFormat)
}

// setupLogging installs the default slog logger on stderr.
func setupLogging(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("config: %w", cfgErr)
		}
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	return cfg, nil
}

// datasetOptions resolves a relative data_dir against the working
// directory and its parents.
func datasetOptions(c *cfgpkg.Global) dataset.Options {
	opt := c.DatasetOptions()
	if dir, err := utils.FindUp("", opt.Dir); err == nil {
		opt.Dir = dir
	}
	return opt
}

// loadDataset loads the dataset once for a one-shot command.
func loadDataset(c *cfgpkg.Global) (*dataset.Dataset, error) {
	return dataset.NewCache(datasetOptions(c)).Get()
}
