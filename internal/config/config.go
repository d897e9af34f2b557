// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Every field maps to one env var.
type Config struct {
	// Database
	DatabasePath    string        `mapstructure:"WAREHOUSE_DB_PATH"`
	BusyTimeout     time.Duration `mapstructure:"WAREHOUSE_DB_BUSY_TIMEOUT"`
	DatabaseLogMode string        `mapstructure:"WAREHOUSE_DB_LOG_LEVEL"` // silent | error | warn | info

	// HTTP adapter, loopback only
	HTTPAddr string `mapstructure:"WAREHOUSE_HTTP_ADDR"`

	// Scheduled export; an empty schedule disables it
	ExportSchedule string `mapstructure:"WAREHOUSE_EXPORT_SCHEDULE"`
	ExportDir      string `mapstructure:"WAREHOUSE_EXPORT_DIR"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // console | json
}

var defaults = map[string]any{
	"WAREHOUSE_DB_PATH":         "warehouse.db",
	"WAREHOUSE_DB_BUSY_TIMEOUT": "5s",
	"WAREHOUSE_DB_LOG_LEVEL":    "silent",
	"WAREHOUSE_HTTP_ADDR":       "127.0.0.1:3000",
	"WAREHOUSE_EXPORT_SCHEDULE": "",
	"WAREHOUSE_EXPORT_DIR":      "exports",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "console",
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real env vars win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("WAREHOUSE_DB_PATH must not be empty"))
	}
	if c.BusyTimeout < 0 {
		errs = append(errs, errors.New("WAREHOUSE_DB_BUSY_TIMEOUT must not be negative"))
	}
	switch c.DatabaseLogMode {
	case "silent", "error", "warn", "info":
	default:
		errs = append(errs, fmt.Errorf("WAREHOUSE_DB_LOG_LEVEL %q is not one of silent, error, warn, info", c.DatabaseLogMode))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of console, json", c.LogFormat))
	}
	if c.ExportSchedule != "" {
		if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
			errs = append(errs, fmt.Errorf("WAREHOUSE_EXPORT_SCHEDULE: %w", err))
		}
		if strings.TrimSpace(c.ExportDir) == "" {
			errs = append(errs, errors.New("WAREHOUSE_EXPORT_DIR is required when a schedule is set"))
		}
	}

	return errors.Join(errs...)
}
