package slogutil

import (
	"io"
	"log/slog"
	"os"

	"lineowner/internal/config"
)

// Subsystem names used as the "subsystem" attribute and as keys in
// logging.subsystems.
const (
	SubsystemGit         = "git"
	SubsystemProvenance  = "provenance"
	SubsystemAnnotations = "annotations"
	SubsystemDrilldown   = "drilldown"
	SubsystemWatcher     = "watcher"
)

// LoggerFactory creates appropriately configured loggers for different subsystems.
// It respects the configuration precedence: CLI flags > subsystem config > global config.
type LoggerFactory struct {
	config   *config.Config
	cliLevel *slog.Level
	w        io.Writer
}

// NewLoggerFactory creates a new logger factory writing to w (stderr when nil).
// cliLevel is nil when no CLI override was given.
func NewLoggerFactory(cfg *config.Config, cliLevel *slog.Level, w io.Writer) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if w == nil {
		w = os.Stderr
	}
	return &LoggerFactory{
		config:   cfg,
		cliLevel: cliLevel,
		w:        w,
	}
}

// For returns a logger for the named subsystem.
func (f *LoggerFactory) For(subsystem string) *slog.Logger {
	level := f.effectiveLevel(subsystem)
	if level >= LevelSilent {
		return NewDiscardLogger()
	}
	return NewFormatLogger(f.w, f.config.Logging.Format, level).With("subsystem", subsystem)
}

// effectiveLevel returns the effective log level for a subsystem.
// Precedence: CLI flag > subsystem config > global config > default (warn)
func (f *LoggerFactory) effectiveLevel(subsystem string) slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if lvl, ok := f.config.Logging.Subsystems[subsystem]; ok && lvl != "" {
		return LevelFromString(lvl)
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}
