//go:build darwin

package storefactory

import (
	"mash/internal/settings"
	"mash/internal/settings/defaultsstore"
)

const platformBackend = BackendDefaults

func newDefaultsStore(opts Options) (settings.Store, error) {
	return defaultsstore.New(opts.Domain, defaultsstore.ExecRunner, opts.Logger)
}
