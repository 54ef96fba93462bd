package slogutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"lineowner/internal/config"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Resolved line history", "key", "main.go:9", "commits", 3)

	output := buf.String()
	if !strings.Contains(output, "[info]") {
		t.Errorf("Expected [info] level in output, got: %s", output)
	}
	if !strings.Contains(output, "Resolved line history | key=main.go:9 commits=3") {
		t.Errorf("Expected message and attrs in output, got: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("Expected trailing newline, got: %q", output)
	}
}

func TestLineHandler_QuotesAmbiguousStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("msg", "message", "fix the thing", "empty", "")

	output := buf.String()
	for _, want := range []string{`message="fix the thing"`, `empty=""`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("debug") }, "[debug]"},
		{func(l *slog.Logger) { l.Info("info") }, "[info]"},
		{func(l *slog.Logger) { l.Warn("warn") }, "[warn]"},
		{func(l *slog.Logger) { l.Error("error") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, slog.LevelDebug))
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out at warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at warn level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be included at warn level")
	}
}

func TestLineHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("subsystem", "git").WithGroup("cmd")

	logger.Info("run", "args", "log")

	if !strings.Contains(buf.String(), "subsystem=git cmd.args=log") {
		t.Errorf("Expected grouped attrs in output, got: %s", buf.String())
	}
}

func TestNewFormatLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewFormatLogger(&buf, "json", slog.LevelInfo).Info("hello", "n", 1)

	output := buf.String()
	for _, want := range []string{`"msg":"hello"`, `"n":1`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in JSON output, got: %s", want, output)
		}
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{3, false, slog.LevelDebug},
		{0, true, LevelSilent},
		{5, true, LevelSilent},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.expected {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.expected)
		}
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()

	// Should not panic
	logger.Debug("debug")
	logger.Error("error")
}

func TestLoggerFactory_Precedence(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Logging.Subsystems = map[string]string{SubsystemGit: "debug"}

	var buf bytes.Buffer
	f := NewLoggerFactory(cfg, nil, &buf)

	f.For(SubsystemGit).Debug("git debug")
	f.For(SubsystemProvenance).Warn("provenance warn")
	f.For(SubsystemProvenance).Error("provenance error")

	output := buf.String()
	if !strings.Contains(output, "git debug") || !strings.Contains(output, "subsystem=git") {
		t.Errorf("Subsystem override should allow git debug, got: %s", output)
	}
	if strings.Contains(output, "provenance warn") {
		t.Error("Global error level should filter provenance warn")
	}
	if !strings.Contains(output, "provenance error") {
		t.Error("Global error level should keep provenance error")
	}

	buf.Reset()
	cli := slog.LevelInfo
	f = NewLoggerFactory(cfg, &cli, &buf)
	f.For(SubsystemGit).Debug("suppressed by cli")
	f.For(SubsystemProvenance).Info("allowed by cli")

	if strings.Contains(buf.String(), "suppressed by cli") {
		t.Error("CLI level should override subsystem debug")
	}
	if !strings.Contains(buf.String(), "allowed by cli") {
		t.Error("CLI level should allow info")
	}
}
