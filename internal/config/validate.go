package config

import (
	"fmt"
	"strings"

	"mash/internal/settings"
	"mash/internal/storefactory"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks every field of cfg. It returns an error describing
// every invalid value found, or nil if all values are valid.
func Validate(cfg Config) error {
	var errs []string

	if b := cfg.Settings.Backend; b != "" && !contains(storefactory.Backends(), b) {
		errs = append(errs, fmt.Sprintf(
			"settings.backend: invalid value %q (allowed: %s)",
			b, strings.Join(storefactory.Backends(), ", ")))
	}
	if d := cfg.Settings.Domain; d != "" {
		if err := settings.ValidateDomain(d); err != nil {
			errs = append(errs, fmt.Sprintf("settings.domain: %v", err))
		}
	}
	if l := strings.ToLower(cfg.Log.Level); l != "" && !contains(validLevels, l) {
		errs = append(errs, fmt.Sprintf(
			"log.level: invalid value %q (allowed: %s)",
			cfg.Log.Level, strings.Join(validLevels, ", ")))
	}
	if f := strings.ToLower(cfg.Log.Format); f != "" && !contains(validFormats, f) {
		errs = append(errs, fmt.Sprintf(
			"log.format: invalid value %q (allowed: %s)",
			cfg.Log.Format, strings.Join(validFormats, ", ")))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
