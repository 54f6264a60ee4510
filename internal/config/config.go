package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/dataset"
	"github.com/KaramelBytes/agridash/internal/render"
)

// Global configuration structure.
type Global struct {
	// Data sources
	DataDir   string   `mapstructure:"data_dir" yaml:"data_dir"`
	Sources   []string `mapstructure:"sources" yaml:"sources"`
	StartYear int      `mapstructure:"start_year" yaml:"start_year"`
	EndYear   int      `mapstructure:"end_year" yaml:"end_year"`

	// Dashboard
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Locale      string `mapstructure:"locale" yaml:"locale"`
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`

	// Analysis
	Target            string   `mapstructure:"target" yaml:"target"`
	Predictors        []string `mapstructure:"predictors" yaml:"predictors"`
	ModelFeatures     []string `mapstructure:"model_features" yaml:"model_features"`
	TimeSeriesColumns []string `mapstructure:"timeseries_columns" yaml:"timeseries_columns"`
	TrendWindow       int      `mapstructure:"trend_window" yaml:"trend_window"`
	ForecastHorizon   int      `mapstructure:"forecast_horizon" yaml:"forecast_horizon"`
	MinResidualDF     int      `mapstructure:"min_residual_df" yaml:"min_residual_df"`
	MaxCondition      float64  `mapstructure:"max_condition" yaml:"max_condition"`
	RidgeAlpha        float64  `mapstructure:"ridge_alpha" yaml:"ridge_alpha"`
	TreeMaxDepth      int      `mapstructure:"tree_max_depth" yaml:"tree_max_depth"`
	TreeMinLeaf       int      `mapstructure:"tree_min_leaf" yaml:"tree_min_leaf"`
	KNNK              int      `mapstructure:"knn_k" yaml:"knn_k"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".agridash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.agridash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AGRIDASH")
	v.AutomaticEnv()

	dopt := dataset.DefaultOptions()
	aopt := analysis.DefaultOptions()
	img := render.DefaultOptions()
	v.SetDefault("data_dir", dopt.Dir)
	v.SetDefault("sources", dopt.Sources)
	v.SetDefault("start_year", dopt.StartYear)
	v.SetDefault("end_year", dopt.EndYear)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("locale", aopt.Locale)
	v.SetDefault("chart_width", img.Width)
	v.SetDefault("chart_height", img.Height)
	v.SetDefault("target", aopt.Target)
	v.SetDefault("predictors", aopt.Predictors)
	v.SetDefault("model_features", aopt.ModelFeatures)
	v.SetDefault("timeseries_columns", aopt.TimeSeriesColumns)
	v.SetDefault("trend_window", aopt.TrendWindow)
	v.SetDefault("forecast_horizon", aopt.ForecastHorizon)
	v.SetDefault("min_residual_df", aopt.MinResidualDF)
	v.SetDefault("max_condition", aopt.MaxCondition)
	v.SetDefault("ridge_alpha", aopt.RidgeAlpha)
	v.SetDefault("tree_max_depth", aopt.TreeMaxDepth)
	v.SetDefault("tree_min_leaf", aopt.TreeMinLeaf)
	v.SetDefault("knn_k", aopt.KNNK)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// the file is optional; a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no analyzer can work with.
func (c *Global) Validate() error {
	if c.StartYear > c.EndYear {
		return fmt.Errorf("start_year %d after end_year %d", c.StartYear, c.EndYear)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources: at least one file required")
	}
	switch c.Locale {
	case "ko", "en":
	default:
		return fmt.Errorf("invalid locale: %s (use ko or en)", c.Locale)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (use text or json)", c.LogFormat)
	}
	return nil
}

// DatasetOptions maps the configuration to loader options.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	opt.Dir = c.DataDir
	opt.Sources = append([]string(nil), c.Sources...)
	opt.StartYear, opt.EndYear = c.StartYear, c.EndYear
	return opt
}

// AnalysisOptions maps the configuration to analyzer options.
func (c *Global) AnalysisOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	opt.Locale = c.Locale
	opt.Target = c.Target
	opt.Predictors = append([]string(nil), c.Predictors...)
	opt.ModelFeatures = append([]string(nil), c.ModelFeatures...)
	opt.TimeSeriesColumns = append([]string(nil), c.TimeSeriesColumns...)
	opt.TrendWindow = c.TrendWindow
	opt.ForecastHorizon = c.ForecastHorizon
	opt.MinResidualDF = c.MinResidualDF
	opt.MaxCondition = c.MaxCondition
	opt.RidgeAlpha = c.RidgeAlpha
	opt.TreeMaxDepth = c.TreeMaxDepth
	opt.TreeMinLeaf = c.TreeMinLeaf
	opt.KNNK = c.KNNK
	return opt
}

// ImageOptions returns the chart image size.
func (c *Global) ImageOptions() render.Options {
	return render.Options{Width: c.ChartWidth, Height: c.ChartHeight}
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	list := func() []string {
		var out []string
		for _, p := range strings.Split(val, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	atoi := func(dst *int, lo int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i < lo {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	atof := func(dst *float64) error {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		*dst = f
		return nil
	}
	switch key {
	case "data_dir":
		c.DataDir = val
	case "sources":
		c.Sources = list()
	case "start_year":
		return atoi(&c.StartYear, 0)
	case "end_year":
		return atoi(&c.EndYear, 0)
	case "listen_addr":
		c.ListenAddr = val
	case "locale":
		switch strings.ToLower(val) {
		case "ko", "kr", "korean":
			c.Locale = "ko"
		case "en", "english":
			c.Locale = "en"
		default:
			return fmt.Errorf("invalid locale: %s (use ko or en)", val)
		}
	case "chart_width":
		return atoi(&c.ChartWidth, 1)
	case "chart_height":
		return atoi(&c.ChartHeight, 1)
	case "target":
		c.Target = val
	case "predictors":
		c.Predictors = list()
	case "model_features":
		c.ModelFeatures = list()
	case "timeseries_columns":
		c.TimeSeriesColumns = list()
	case "trend_window":
		return atoi(&c.TrendWindow, 1)
	case "forecast_horizon":
		return atoi(&c.ForecastHorizon, 0)
	case "min_residual_df":
		return atoi(&c.MinResidualDF, 0)
	case "max_condition":
		return atof(&c.MaxCondition)
	case "ridge_alpha":
		return atof(&c.RidgeAlpha)
	case "tree_max_depth":
		return atoi(&c.TreeMaxDepth, 1)
	case "tree_min_leaf":
		return atoi(&c.TreeMinLeaf, 1)
	case "knn_k":
		return atoi(&c.KNNK, 1)
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
