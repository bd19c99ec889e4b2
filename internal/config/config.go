// Package config handles mash configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mash/internal/storefactory"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the contents of config.yaml. A path ending in .toml
// is read and written as TOML instead.
type Config struct {
	Settings SettingsConfig `yaml:"settings" toml:"settings" json:"settings"`
	Log      LogConfig      `yaml:"log" toml:"log" json:"log"`
}

// SettingsConfig selects the settings store. Empty fields mean the
// platform default.
type SettingsConfig struct {
	Backend string `yaml:"backend,omitempty" toml:"backend,omitempty" json:"backend,omitempty"`
	Domain  string `yaml:"domain,omitempty" toml:"domain,omitempty" json:"domain,omitempty"`
	Dir     string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Settings: SettingsConfig{
			Domain: storefactory.DefaultDomain,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the config file location: $MASH_CONFIG if set, otherwise
// config.yaml in the default settings directory.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(storefactory.DefaultDir(), "config.yaml")
}

// Load reads config.yaml from path and applies defaults for missing fields.
// A missing file is not an error; it yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	unmarshal := yaml.Unmarshal
	if isTOML(path) {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Settings.Domain == "" {
		cfg.Settings.Domain = storefactory.DefaultDomain
	}

	return cfg, nil
}

// Write writes the provided configuration to path.
func Write(path string, cfg Config) error {
	marshal := yaml.Marshal
	if isTOML(path) {
		marshal = toml.Marshal
	}
	data, err := marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// StoreOptions converts the settings section into storefactory options.
func (c Config) StoreOptions(logger *slog.Logger) storefactory.Options {
	return storefactory.Options{
		Backend: c.Settings.Backend,
		Domain:  c.Settings.Domain,
		Dir:     c.Settings.Dir,
		Logger:  logger,
	}
}

// SlogLevel maps Log.Level to a slog level. Unknown levels map to warn;
// Validate reports them.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the process logger on w according to Log.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
