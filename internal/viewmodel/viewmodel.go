// Package viewmodel holds the long-lived state the UI shell works with:
// one settings store and the theme manager layered on it.
package viewmodel

import (
	"io"

	"mash/internal/settings"
	"mash/internal/theme"
)

// ViewModel owns a settings store for the lifetime of the UI scope and
// exposes it, together with a theme.Manager sharing that store, to the
// rest of the application.
type ViewModel struct {
	store settings.Store
	theme *theme.Manager
}

// New wraps store. opts are passed to the theme manager.
func New(store settings.Store, opts ...theme.Option) *ViewModel {
	return &ViewModel{
		store: store,
		theme: theme.NewManager(store, opts...),
	}
}

// Settings returns the shared settings store.
func (vm *ViewModel) Settings() settings.Store { return vm.store }

// Theme returns the theme manager.
func (vm *ViewModel) Theme() *theme.Manager { return vm.theme }

// Close releases the store if its backend holds resources (e.g. a
// database handle). Backends over always-open OS storage need no close.
func (vm *ViewModel) Close() error {
	if c, ok := vm.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
