package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// CurrentVersion is the config schema version written by this build
	CurrentVersion = 1

	// DirName is the per-repository directory holding config.json
	DirName = ".lineowner"

	// EnvPrefix prefixes environment overrides, e.g. LINEOWNER_GIT_TIMEOUTMS
	EnvPrefix = "LINEOWNER"
)

// Config represents the complete lineowner configuration
type Config struct {
	Version  int    `json:"version" yaml:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" yaml:"repoRoot" mapstructure:"repoRoot"`

	Git         GitConfig         `json:"git" yaml:"git" mapstructure:"git"`
	Cache       CacheConfig       `json:"cache" yaml:"cache" mapstructure:"cache"`
	Annotations AnnotationsConfig `json:"annotations" yaml:"annotations" mapstructure:"annotations"`
	Content     ContentConfig     `json:"content" yaml:"content" mapstructure:"content"`
	Watcher     WatcherConfig     `json:"watcher" yaml:"watcher" mapstructure:"watcher"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// GitConfig controls how the git subprocess is invoked
type GitConfig struct {
	Binary         string `json:"binary" yaml:"binary" mapstructure:"binary"`
	TimeoutMs      int    `json:"timeoutMs" yaml:"timeoutMs" mapstructure:"timeoutMs"`
	MaxOutputBytes int    `json:"maxOutputBytes" yaml:"maxOutputBytes" mapstructure:"maxOutputBytes"`
}

// CacheConfig contains provenance cache configuration
type CacheConfig struct {
	SweepIntervalSeconds int `json:"sweepIntervalSeconds" yaml:"sweepIntervalSeconds" mapstructure:"sweepIntervalSeconds"`
}

// AnnotationsConfig contains annotation pass configuration
type AnnotationsConfig struct {
	MaxConcurrentLines int `json:"maxConcurrentLines" yaml:"maxConcurrentLines" mapstructure:"maxConcurrentLines"`
}

// ContentConfig contains revision content store configuration
type ContentConfig struct {
	CompressThresholdBytes int `json:"compressThresholdBytes" yaml:"compressThresholdBytes" mapstructure:"compressThresholdBytes"`
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	DebounceMs     int  `json:"debounceMs" yaml:"debounceMs" mapstructure:"debounceMs"`
	PollIntervalMs int  `json:"pollIntervalMs" yaml:"pollIntervalMs" mapstructure:"pollIntervalMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string            `json:"format" yaml:"format" mapstructure:"format"`
	Level      string            `json:"level" yaml:"level" mapstructure:"level"`
	Subsystems map[string]string `json:"subsystems,omitempty" yaml:"subsystems,omitempty" mapstructure:"subsystems"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Git: GitConfig{
			Binary:         "git",
			TimeoutMs:      10000,
			MaxOutputBytes: 10 * 1024 * 1024,
		},
		Cache: CacheConfig{
			SweepIntervalSeconds: 300,
		},
		Annotations: AnnotationsConfig{
			MaxConcurrentLines: 4,
		},
		Content: ContentConfig{
			CompressThresholdBytes: 64 * 1024,
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceMs:     500,
			PollIntervalMs: 2000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// setDefaults mirrors DefaultConfig into viper so partial files and env
// overrides are layered over complete defaults.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("repoRoot", d.RepoRoot)
	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.timeoutMs", d.Git.TimeoutMs)
	v.SetDefault("git.maxOutputBytes", d.Git.MaxOutputBytes)
	v.SetDefault("cache.sweepIntervalSeconds", d.Cache.SweepIntervalSeconds)
	v.SetDefault("annotations.maxConcurrentLines", d.Annotations.MaxConcurrentLines)
	v.SetDefault("content.compressThresholdBytes", d.Content.CompressThresholdBytes)
	v.SetDefault("watcher.enabled", d.Watcher.Enabled)
	v.SetDefault("watcher.debounceMs", d.Watcher.DebounceMs)
	v.SetDefault("watcher.pollIntervalMs", d.Watcher.PollIntervalMs)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadConfig loads configuration from <repoRoot>/.lineowner/config.json,
// layered over defaults and LINEOWNER_* environment variables.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, DirName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.RepoRoot == "" || cfg.RepoRoot == "." {
		cfg.RepoRoot = repoRoot
	}

	return &cfg, nil
}

// Save writes the configuration to <repoRoot>/.lineowner/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Git.Binary == "" {
		return &ConfigError{Field: "git.binary", Message: "must not be empty"}
	}
	if c.Git.TimeoutMs <= 0 {
		return &ConfigError{Field: "git.timeoutMs", Message: "must be positive"}
	}
	if c.Git.MaxOutputBytes < 1024*1024 {
		return &ConfigError{Field: "git.maxOutputBytes", Message: "must be at least 1MiB"}
	}
	if c.Cache.SweepIntervalSeconds <= 0 {
		return &ConfigError{Field: "cache.sweepIntervalSeconds", Message: "must be positive"}
	}
	if c.Annotations.MaxConcurrentLines <= 0 {
		return &ConfigError{Field: "annotations.maxConcurrentLines", Message: "must be positive"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
