// Package config handles configuration loading for fundalens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers" json:"providers"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"  json:"analysis"`
	HTTP      HTTPConfig      `mapstructure:"http"      yaml:"http"      json:"http"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"      json:"news"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`
}

// ProvidersConfig selects and configures the financial data providers.
type ProvidersConfig struct {
	// Primary is tried first for every model; the registry falls back to
	// the remaining registered providers in order.
	Primary       string              `mapstructure:"primary"       yaml:"primary"       json:"primary"` // "alphavantage", "yahoo", "stockanalysis"
	AlphaVantage  AlphaVantageConfig  `mapstructure:"alphavantage"  yaml:"alphavantage"  json:"alphavantage"`
	Yahoo         YahooConfig         `mapstructure:"yahoo"         yaml:"yahoo"         json:"yahoo"`
	StockAnalysis StockAnalysisConfig `mapstructure:"stockanalysis" yaml:"stockanalysis" json:"stockanalysis"`
}

// AlphaVantageConfig holds Alpha Vantage API settings. The key is excluded
// from JSON so API responses never carry it; use the masked key status
// endpoint instead.
type AlphaVantageConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"  json:"-"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
}

// YahooConfig holds Yahoo Finance settings.
type YahooConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// StockAnalysisConfig holds stockanalysis.com scraper settings.
type StockAnalysisConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// AnalysisConfig holds the valuation model parameters. Rates are
// fractional: 0.0411 means 4.11%.
type AnalysisConfig struct {
	RiskFreeRate     float64 `mapstructure:"risk_free_rate"    yaml:"risk_free_rate"    json:"risk_free_rate"`
	MarketReturn     float64 `mapstructure:"market_return"     yaml:"market_return"     json:"market_return"`
	TerminalGrowth   float64 `mapstructure:"terminal_growth"   yaml:"terminal_growth"   json:"terminal_growth"`
	ProjectionYears  int     `mapstructure:"projection_years"  yaml:"projection_years"  json:"projection_years"`
	MaxGrowthYears   int     `mapstructure:"max_growth_years"  yaml:"max_growth_years"  json:"max_growth_years"`
	FallbackGrowth   float64 `mapstructure:"fallback_growth"   yaml:"fallback_growth"   json:"fallback_growth"`
	FallbackDiscount float64 `mapstructure:"fallback_discount" yaml:"fallback_discount" json:"fallback_discount"`
	CacheTTL         int     `mapstructure:"cache_ttl"         yaml:"cache_ttl"         json:"cache_ttl"` // seconds
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// APIConfig holds the REST API server settings.
type APIConfig struct {
	Addr        string   `mapstructure:"addr"         yaml:"addr"         json:"addr"` // e.g., ":8900"
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// NewsConfig holds headline fetching settings.
type NewsConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Limit   int      `mapstructure:"limit"   yaml:"limit"   json:"limit"`
	Feeds   []string `mapstructure:"feeds"   yaml:"feeds"   json:"feeds"` // extra RSS feed URL templates
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "pretty" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundalens/config.yaml (home directory)
//  3. /etc/fundalens/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUNDALENS_<SECTION>_<KEY>, e.g., FUNDALENS_ANALYSIS_RISK_FREE_RATE
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundalens"))
	v.AddConfigPath("/etc/fundalens")

	v.SetEnvPrefix("FUNDALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUNDALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("providers.primary", "alphavantage")
	v.SetDefault("providers.alphavantage.base_url", "https://www.alphavantage.co/query")
	v.SetDefault("providers.yahoo.enabled", true)
	v.SetDefault("providers.stockanalysis.enabled", true)

	// Analysis defaults. Risk-free rate tracks the 10Y US Treasury yield;
	// market return is the long-run S&P 500 average.
	v.SetDefault("analysis.risk_free_rate", 0.0411)
	v.SetDefault("analysis.market_return", 0.09)
	v.SetDefault("analysis.terminal_growth", 0.02)
	v.SetDefault("analysis.projection_years", 5)
	v.SetDefault("analysis.max_growth_years", 5)
	v.SetDefault("analysis.fallback_growth", 0.08)
	v.SetDefault("analysis.fallback_discount", 0.09)
	v.SetDefault("analysis.cache_ttl", 900) // 15 minutes; statements change yearly

	// HTTP defaults
	v.SetDefault("http.timeout_seconds", 30)

	// API defaults
	v.SetDefault("api.addr", ":8900")
	v.SetDefault("api.cors_origins", []string{"*"})

	// News defaults
	v.SetDefault("news.enabled", true)
	v.SetDefault("news.limit", 10)
	v.SetDefault("news.feeds", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables. The short ALPHAVANTAGE_API_KEY form is the conventional
// .env name; the prefixed form wins when both are set.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FUNDALENS_PROVIDERS_ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.Providers.AlphaVantage.APIKey = key
		return
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.Providers.AlphaVantage.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
