package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	Catalog CatalogConfig `yaml:"catalog"`
	Fines   FinesConfig   `yaml:"fines"`
	Clock   ClockConfig   `yaml:"clock"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// JournalConfig locates the SQLite circulation journal.
type JournalConfig struct {
	Path string `yaml:"path"` // ":memory:" keeps it in memory
}

// CatalogConfig locates the YAML file that seeds the ledger.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// FinesConfig sets the penalty charged per overdue item per day.
type FinesConfig struct {
	DailyRate string `yaml:"daily_rate"`
}

// ClockConfig schedules automatic day advancement. Empty means manual.
type ClockConfig struct {
	Schedule string `yaml:"schedule"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv populates the process environment from a .env file. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.overrideWithEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LIBRARY_JOURNAL"); val != "" {
		c.Journal.Path = val
	}
	if val := os.Getenv("LIBRARY_CATALOG"); val != "" {
		c.Catalog.Path = val
	}
	if val := os.Getenv("LIBRARY_DAILY_FINE"); val != "" {
		c.Fines.DailyRate = val
	}
	if val := os.Getenv("LIBRARY_CLOCK"); val != "" {
		c.Clock.Schedule = val
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = ":memory:"
	}
	if c.Fines.DailyRate == "" {
		c.Fines.DailyRate = "0.10"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}

	rate, err := decimal.NewFromString(c.Fines.DailyRate)
	if err != nil {
		return fmt.Errorf("invalid daily fine %q: %w", c.Fines.DailyRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("daily fine cannot be negative: %s", rate)
	}

	if c.Clock.Schedule != "" {
		if _, err := cron.ParseStandard(c.Clock.Schedule); err != nil {
			return fmt.Errorf("invalid clock schedule %q: %w", c.Clock.Schedule, err)
		}
	}
	return nil
}

// DailyFine returns the validated daily rate.
func (c *Config) DailyFine() decimal.Decimal {
	rate, err := decimal.NewFromString(c.Fines.DailyRate)
	if err != nil {
		return decimal.New(10, -2)
	}
	return rate
}
