// Package storefactory creates the settings store for the host platform.
//
// The platform default is fixed at build time: darwin builds use the user
// defaults system, every other build uses a YAML file per domain. Callers
// may still ask for a specific backend by name.
package storefactory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mash/internal/settings"
	"mash/internal/settings/filesystem"
	"mash/internal/settings/memstore"
	"mash/internal/settings/sqlitestore"
	"mash/internal/settings/yamlstore"
)

// Backend names accepted in Options.Backend.
const (
	BackendYAML     = "yaml"
	BackendFiles    = "files"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendDefaults = "defaults"
)

// DefaultDomain is the settings domain the app uses unless told otherwise.
const DefaultDomain = "com.mash.party.preferences"

var (
	// ErrUnknownBackend is returned for a backend name that doesn't exist.
	ErrUnknownBackend = errors.New("unknown settings backend")

	// ErrBackendUnavailable is returned for a backend that exists but
	// cannot run on this platform.
	ErrBackendUnavailable = errors.New("settings backend not available on this platform")
)

// Backends returns every backend name in a stable order.
func Backends() []string {
	return []string{BackendYAML, BackendFiles, BackendSQLite, BackendMemory, BackendDefaults}
}

// Options selects and configures the store. The zero value yields the
// platform default backend on DefaultDomain in the platform settings
// directory.
type Options struct {
	Backend string // empty for DefaultBackend()
	Domain  string // empty for DefaultDomain
	Dir     string // empty for DefaultDir(); unused by memory and defaults
	Logger  *slog.Logger
}

// DefaultBackend returns the backend chosen for this build's platform.
func DefaultBackend() string {
	return platformBackend
}

// DefaultDir returns the directory file-backed stores use by default:
// $XDG_CONFIG_HOME/mash, falling back to ~/.config/mash.
func DefaultDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "mash")
}

// CreateStore returns a ready-to-use store. Each call returns a new
// instance; instances created for the same backend, directory and domain
// share their entries.
func CreateStore(opts Options) (settings.Store, error) {
	opts = opts.withDefaults()

	var (
		store settings.Store
		err   error
	)
	switch opts.Backend {
	case BackendYAML:
		store, err = yamlstore.New(opts.Dir, opts.Domain, opts.Logger)
	case BackendFiles:
		store, err = filesystem.New(opts.Dir, opts.Domain, opts.Logger)
	case BackendSQLite:
		store, err = sqlitestore.Open(filepath.Join(opts.Dir, sqlitestore.FileName), opts.Domain, opts.Logger)
	case BackendMemory:
		store, err = memstore.New(opts.Domain)
	case BackendDefaults:
		store, err = newDefaultsStore(opts)
	default:
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownBackend, opts.Backend, Backends())
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s settings store: %w", opts.Backend, err)
	}

	opts.Logger.Debug("settings store ready", "backend", opts.Backend, "domain", opts.Domain, "dir", opts.Dir)
	return store, nil
}

func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = DefaultBackend()
	}
	if o.Domain == "" {
		o.Domain = DefaultDomain
	}
	if o.Dir == "" {
		o.Dir = DefaultDir()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
