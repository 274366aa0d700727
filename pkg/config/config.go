package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sobolyok/risk-project/pkg/feature"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/regress"
)

// Config represents the complete experiment configuration
type Config struct {
	Data     DataConfig          `mapstructure:"data"`
	Features FeaturesConfig      `mapstructure:"features"`
	Target   TargetConfig        `mapstructure:"target"`
	Split    SplitConfig         `mapstructure:"split"`
	Models   []regress.ModelSpec `mapstructure:"models"`
	Chart    ChartConfig         `mapstructure:"chart"`
	Storage  StorageConfig       `mapstructure:"storage"`
	NATS     NATSConfig          `mapstructure:"nats"`
	Logging  LoggingConfig       `mapstructure:"logging"`
}

// DataConfig locates the price history
type DataConfig struct {
	CSVPath string `mapstructure:"csv_path"`
	Symbol  string `mapstructure:"symbol"`
}

// FeaturesConfig holds the ARMA table shape
type FeaturesConfig struct {
	P        int `mapstructure:"p"`
	Q        int `mapstructure:"q"`
	MAWindow int `mapstructure:"ma_window"`
}

// TargetConfig holds the drop threshold as a fraction (0.02 = 2%)
type TargetConfig struct {
	Percent float64 `mapstructure:"percent"`
}

// SplitConfig holds YYYY-MM-DD dates. Rows before Start are discarded,
// train is [Start, Boundary) and test is [Boundary, End). Empty End means
// the test set runs to the last row.
type SplitConfig struct {
	Start    string `mapstructure:"start"`
	Boundary string `mapstructure:"boundary"`
	End      string `mapstructure:"end"`
}

// ChartConfig holds chart output settings
type ChartConfig struct {
	Output string  `mapstructure:"output"`
	Width  float64 `mapstructure:"width"`  // inches
	Height float64 `mapstructure:"height"` // inches
}

// StorageConfig holds optional persistence backends. Empty values disable them.
type StorageConfig struct {
	DuckDBPath string `mapstructure:"duckdb_path"`
	MilvusAddr string `mapstructure:"milvus_addr"`
}

// NATSConfig holds the optional score publishing settings
type NATSConfig struct {
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Enable environment variable override, e.g. DAYFALL_TARGET_PERCENT
	v.SetEnvPrefix("DAYFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Models) == 0 {
		cfg.Models = regress.DefaultModels()
	}

	return &cfg, nil
}

// Default returns the configuration of the daily AMZN experiment
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	def := feature.DefaultConfig()

	v.SetDefault("data.csv_path", "../data/AMZN.csv")
	v.SetDefault("data.symbol", "AMZN")

	v.SetDefault("features.p", def.P)
	v.SetDefault("features.q", def.Q)
	v.SetDefault("features.ma_window", def.MAWindow)

	v.SetDefault("target.percent", 0.02)

	v.SetDefault("split.start", "2019-01-01")
	v.SetDefault("split.boundary", "2019-10-01")
	v.SetDefault("split.end", "2019-11-01")

	v.SetDefault("chart.output", "days_to_fall.png")
	v.SetDefault("chart.width", 12.0)
	v.SetDefault("chart.height", 6.0)

	v.SetDefault("storage.duckdb_path", "")
	v.SetDefault("storage.milvus_addr", "")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.stream_name", "dayfall")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.env", "development")
}

// FeatureConfig converts the features section for the table builder
func (c *Config) FeatureConfig() feature.Config {
	return feature.Config{P: c.Features.P, Q: c.Features.Q, MAWindow: c.Features.MAWindow}
}

// Dates parses the split section. A missing start or end is the zero time.
func (s SplitConfig) Dates() (start, boundary, end time.Time, err error) {
	if start, err = parseDate("split.start", s.Start); err != nil {
		return
	}
	if boundary, err = parseDate("split.boundary", s.Boundary); err != nil {
		return
	}
	if boundary.IsZero() {
		err = fmt.Errorf("split.boundary is required")
		return
	}
	end, err = parseDate("split.end", s.End)
	return
}

func parseDate(key, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if err := c.FeatureConfig().Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}

	if c.Target.Percent < 0 || c.Target.Percent >= 1 {
		return fmt.Errorf("target.percent must be in [0, 1), got %v", c.Target.Percent)
	}

	start, boundary, end, err := c.Split.Dates()
	if err != nil {
		return err
	}
	if !start.IsZero() && !boundary.After(start) {
		return fmt.Errorf("split.boundary must be after split.start")
	}
	if !end.IsZero() && !end.After(boundary) {
		return fmt.Errorf("split.end must be after split.boundary")
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	for _, spec := range c.Models {
		if _, err := regress.New(spec); err != nil {
			return fmt.Errorf("models: %w", err)
		}
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart width and height must be positive")
	}

	return nil
}
