// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a logger writing to w. Format "json" emits one JSON object per
// line; anything else uses the human readable console writer.
func New(w io.Writer, level, format string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to zerolog, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Gorm bridges gorm's SQL logging into zerolog.
func Gorm(l zerolog.Logger, mode string) gormlogger.Interface {
	component := l.With().Str("component", "gorm").Logger()
	return gormlogger.New(&component, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  GormLevel(mode),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GormLevel maps silent, error, warn and info onto gorm's levels.
func GormLevel(mode string) gormlogger.LogLevel {
	switch strings.ToLower(mode) {
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}
