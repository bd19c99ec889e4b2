//go:build !darwin

package storefactory

import (
	"fmt"

	"mash/internal/settings"
)

const platformBackend = BackendYAML

func newDefaultsStore(opts Options) (settings.Store, error) {
	return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, BackendDefaults)
}
