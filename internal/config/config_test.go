package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Git.Binary != "git" {
		t.Errorf("Git.Binary = %q, want git", cfg.Git.Binary)
	}
	if cfg.Git.MaxOutputBytes < 10*1024*1024 {
		t.Errorf("Git.MaxOutputBytes = %d, must hold whole-file content", cfg.Git.MaxOutputBytes)
	}
	if cfg.Cache.SweepIntervalSeconds != 300 {
		t.Errorf("Cache.SweepIntervalSeconds = %d, want 300", cfg.Cache.SweepIntervalSeconds)
	}
	if cfg.Annotations.MaxConcurrentLines <= 0 {
		t.Errorf("Annotations.MaxConcurrentLines = %d, want positive", cfg.Annotations.MaxConcurrentLines)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 99 }, "version"},
		{"empty binary", func(c *Config) { c.Git.Binary = "" }, "git.binary"},
		{"zero timeout", func(c *Config) { c.Git.TimeoutMs = 0 }, "git.timeoutMs"},
		{"tiny buffer", func(c *Config) { c.Git.MaxOutputBytes = 512 }, "git.maxOutputBytes"},
		{"zero sweep", func(c *Config) { c.Cache.SweepIntervalSeconds = 0 }, "cache.sweepIntervalSeconds"},
		{"zero concurrency", func(c *Config) { c.Annotations.MaxConcurrentLines = 0 }, "annotations.maxConcurrentLines"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "git.binary", Message: "must not be empty"}
	want := "config error in field 'git.binary': must not be empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", cfg.RepoRoot, dir)
	}
	if !reflect.DeepEqual(cfg.Git, DefaultConfig().Git) {
		t.Errorf("Git = %+v, want defaults", cfg.Git)
	}
	if !reflect.DeepEqual(cfg.Cache, DefaultConfig().Cache) {
		t.Errorf("Cache = %+v, want defaults", cfg.Cache)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DirName, "config.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "version": 1,
  "git": {"timeoutMs": 2500},
  "cache": {"sweepIntervalSeconds": 60},
  "logging": {"level": "debug", "subsystems": {"git": "error"}}
}`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Git.TimeoutMs != 2500 {
		t.Errorf("Git.TimeoutMs = %d, want 2500", cfg.Git.TimeoutMs)
	}
	if cfg.Git.Binary != "git" {
		t.Errorf("Git.Binary = %q, unset keys should keep defaults", cfg.Git.Binary)
	}
	if cfg.Cache.SweepIntervalSeconds != 60 {
		t.Errorf("Cache.SweepIntervalSeconds = %d, want 60", cfg.Cache.SweepIntervalSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if got := cfg.Logging.Subsystems["git"]; got != "error" {
		t.Errorf("Logging.Subsystems[git] = %q, want error", got)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINEOWNER_GIT_TIMEOUTMS", "1234")
	t.Setenv("LINEOWNER_CACHE_SWEEPINTERVALSECONDS", "42")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Git.TimeoutMs != 1234 {
		t.Errorf("Git.TimeoutMs = %d, want 1234", cfg.Git.TimeoutMs)
	}
	if cfg.Cache.SweepIntervalSeconds != 42 {
		t.Errorf("Cache.SweepIntervalSeconds = %d, want 42", cfg.Cache.SweepIntervalSeconds)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "{not json")

	if _, err := LoadConfig(dir); err == nil {
		t.Error("LoadConfig() should fail on malformed JSON")
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Git.TimeoutMs = 7777

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DirName, "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Git.TimeoutMs != 7777 {
		t.Errorf("Git.TimeoutMs = %d, want 7777", loaded.Git.TimeoutMs)
	}
}
