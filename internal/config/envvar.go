package config

import "os"

// Environment variable names for mash configuration.
const (
	EnvConfig      = "MASH_CONFIG"       // Path to config.yaml
	EnvBackend     = "MASH_BACKEND"      // Settings backend name
	EnvDomain      = "MASH_DOMAIN"       // Settings domain
	EnvSettingsDir = "MASH_SETTINGS_DIR" // Directory for file-backed stores
	EnvLogLevel    = "MASH_LOG_LEVEL"    // debug, info, warn or error
)

// ApplyEnvOverrides overrides cfg with any MASH_* variables that are set.
// These overrides are not persisted to the config file.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Settings.Backend = v
	}
	if v := os.Getenv(EnvDomain); v != "" {
		cfg.Settings.Domain = v
	}
	if v := os.Getenv(EnvSettingsDir); v != "" {
		cfg.Settings.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}
