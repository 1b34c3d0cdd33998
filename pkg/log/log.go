// SPDX-License-Identifier: BSD-3-Clause

// Package log builds the agent's structured logger: zerolog for
// human-readable console output, an optional rotating file sink via
// lumberjack, fanned into one log/slog.Logger with slog-multi. The level
// is controlled through zerolog's process-global level so setLogLevel
// commands and SIGHUP both hot-swap it without tearing down and
// rebuilding the logger.
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// FileSink describes the rotating log file destination.
type FileSink struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxAgeDays int
}

// Config configures the agent logger.
type Config struct {
	Level slog.Level
	File  FileSink
}

// New builds a *slog.Logger per Config. The console sink is always
// active; the file sink is added only when cfg.File.Enabled.
func New(cfg Config) *slog.Logger {
	SetLevel(cfg.Level)

	// The handlers pass every level from Debug up; zerolog's global level,
	// set by SetLevel, does the filtering.
	console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	handlers := []slog.Handler{
		slogzerolog.Option{Level: slog.LevelDebug, Logger: &console}.NewZerologHandler(),
	}

	if cfg.File.Enabled && cfg.File.Path != "" {
		var w io.Writer = &lumberjack.Logger{
			Filename: cfg.File.Path,
			MaxSize:  maxOr(cfg.File.MaxSizeMB, 10),
			MaxAge:   maxOr(cfg.File.MaxAgeDays, 7),
			Compress: true,
		}
		fileLogger := zerolog.New(w).With().Timestamp().Logger()
		handlers = append(handlers, slogzerolog.Option{Level: slog.LevelDebug, Logger: &fileLogger}.NewZerologHandler())
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func maxOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// SetLevel hot-swaps the minimum log level for every sink built by New.
// This backs both the setLogLevel command and SIGHUP reload.
func SetLevel(level slog.Level) {
	zerolog.SetGlobalLevel(zerologLevel(level))
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l <= slog.LevelDebug:
		return zerolog.DebugLevel
	case l <= slog.LevelInfo:
		return zerolog.InfoLevel
	case l <= slog.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel maps the agent's wire-level vocabulary
// (TRACE/DEBUG/INFO/WARN/ERROR/CRITICAL) onto slog.Level. CRITICAL has
// no slog counterpart and folds to ERROR.
func ParseLevel(name string) slog.Level {
	switch name {
	case "TRACE", "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
