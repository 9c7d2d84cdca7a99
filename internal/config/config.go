package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/akoskomuves/promptly/internal/analyzer"
)

// Config is the top-level promptly configuration.
type Config struct {
	DBPath        string         `mapstructure:"db_path"`
	ContextWindow int            `mapstructure:"context_window"`
	DefaultModel  string         `mapstructure:"default_model"`
	Pricing       []PricingEntry `mapstructure:"pricing"`
	Trends        Trends         `mapstructure:"trends"`
	Overlap       Overlap        `mapstructure:"overlap"`
	Enrich        Enrich         `mapstructure:"enrich"`
	Output        Output         `mapstructure:"output"`
}

// PricingEntry prices one model name fragment per million tokens. Entries
// are a list rather than a map so model names may contain dots.
type PricingEntry struct {
	Model            string  `mapstructure:"model"`
	InputPerMillion  float64 `mapstructure:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million"`
}

// Trends configures the per-project trend windows.
type Trends struct {
	PeriodCount int `mapstructure:"period_count"`
	PeriodDays  int `mapstructure:"period_days"`
}

// Overlap configures parallel-session detection.
type Overlap struct {
	IncludeTouching bool `mapstructure:"include_touching"`
}

// Enrich configures background enrichment.
type Enrich struct {
	Workers int `mapstructure:"workers"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with PROMPTLY_ override file values, e.g. PROMPTLY_DB_PATH or
// PROMPTLY_TRENDS_PERIOD_DAYS.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("context_window", analyzer.DefaultContextWindow)
	v.SetDefault("default_model", DefaultModel)
	v.SetDefault("trends.period_count", DefaultTrends.PeriodCount)
	v.SetDefault("trends.period_days", DefaultTrends.PeriodDays)
	v.SetDefault("overlap.include_touching", false)
	v.SetDefault("enrich.workers", DefaultEnrichWorkers)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix("promptly")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(ExpandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.Pricing) == 0 {
		cfg.Pricing = DefaultPricing()
	}
	if cfg.Enrich.Workers <= 0 {
		cfg.Enrich.Workers = DefaultEnrichWorkers
	}
	cfg.DBPath = ExpandPath(cfg.DBPath)

	return &cfg, nil
}

// PriceTable builds the cost estimator from the configured price list.
func (c *Config) PriceTable() analyzer.PriceTable {
	prices := make(map[string]analyzer.ModelPricing, len(c.Pricing))
	for _, p := range c.Pricing {
		if p.Model == "" {
			continue
		}
		prices[p.Model] = analyzer.ModelPricing{
			InputPerMillion:  p.InputPerMillion,
			OutputPerMillion: p.OutputPerMillion,
		}
	}
	return analyzer.NewPriceTable(prices, c.DefaultModel)
}

// Patterns returns the analyzer pattern tables with the configured context window.
func (c *Config) Patterns() analyzer.Patterns {
	return analyzer.DefaultPatterns().WithContextWindow(c.ContextWindow)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return ExpandPath(DefaultConfigDir)
}
