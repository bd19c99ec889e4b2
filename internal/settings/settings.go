// Package settings defines the key-value settings store used by the MASH
// app for preferences that must survive process restarts.
//
// A Store is bound to exactly one settings domain (a named, app-private
// bucket of string pairs) for its whole lifetime. Each host platform has its
// own backend; see the storefactory package for how one is chosen.
package settings

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Store defines the interface for persistent string key-value settings.
// Keys are opaque strings; the store enforces no namespacing or schema.
//
// A Store does not serialize concurrent callers: components sharing one
// store must order their writes themselves. The policy between writers is
// last write wins.
type Store interface {
	// Domain returns the settings domain this store is bound to.
	Domain() string

	// Lookup returns the value for key and whether it was present.
	// A missing key is not an error.
	Lookup(key string) (string, bool, error)

	// GetString returns the value for key, or defaultValue unchanged if
	// the key is not present.
	GetString(key, defaultValue string) (string, error)

	// PutString stores value under key, overwriting any prior value.
	// The write is flushed to durable storage before PutString returns.
	PutString(key, value string) error

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(key string) error

	// Clear deletes every entry in the store's domain.
	Clear() error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	// Keys returns all keys in the domain in ascending order.
	Keys() ([]string, error)
}

// Snapshotter is implemented by stores that can read a whole domain in one
// pass. The returned map belongs to the caller.
type Snapshotter interface {
	All() (map[string]string, error)
}

// OrDefault resolves a Lookup result against a caller-supplied default.
// Backends use it to implement GetString on top of Lookup.
func OrDefault(value string, ok bool, err error, defaultValue string) (string, error) {
	if err != nil {
		return defaultValue, err
	}
	if !ok {
		return defaultValue, nil
	}
	return value, nil
}

// ValidateKey checks that a key is non-empty, valid UTF-8 and free of NUL
// bytes.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty: %w", ErrInvalidKey)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("key %q is not valid UTF-8: %w", key, ErrInvalidKey)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("key %q contains a NUL byte: %w", key, ErrInvalidKey)
	}
	return nil
}

// ValidateValue checks that a value is valid UTF-8 and free of NUL bytes.
// Every backend stores text (YAML, JSON, plist strings, process
// arguments), so arbitrary bytes could not round-trip through all of them.
func ValidateValue(value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("value %q is not valid UTF-8: %w", value, ErrInvalidValue)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("value %q contains a NUL byte: %w", value, ErrInvalidValue)
	}
	return nil
}

// ValidateEntry validates a key and the value about to be stored under it.
func ValidateEntry(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return ValidateValue(value)
}

// ValidateDomain checks that a domain name can be used as a single path
// element by file-backed stores.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty: %w", ErrInvalidDomain)
	}
	if strings.ContainsAny(domain, "/\\\x00") {
		return fmt.Errorf("domain %q contains a path separator: %w", domain, ErrInvalidDomain)
	}
	if strings.HasPrefix(domain, ".") {
		return fmt.Errorf("domain %q cannot start with a dot: %w", domain, ErrInvalidDomain)
	}
	return nil
}
