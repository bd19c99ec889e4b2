package cmd

import (
	"bytes"
	"testing"

	"mash/internal/settings/memstore"
	"mash/internal/theme"
	"mash/internal/viewmodel"
)

// setupTestApp creates an App backed by a fresh in-memory settings domain.
// The host colour scheme is pinned to light so output does not depend on
// the terminal running the tests.
func setupTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	domain := "cmd." + t.Name()
	store, err := memstore.New(domain)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { memstore.Drop(domain) })

	var out bytes.Buffer
	app := &App{
		VM:  viewmodel.New(store, theme.WithDetector(theme.StaticDetector(false))),
		Out: &out,
		Err: &out,
	}
	return app, &out
}

// seedSettings writes the given pairs into the app's store.
func seedSettings(t *testing.T, app *App, pairs map[string]string) {
	t.Helper()
	for k, v := range pairs {
		if err := app.VM.Settings().PutString(k, v); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
}

// rebuildTestApp builds a new App over the same store, as a restart would.
func rebuildTestApp(t *testing.T, app *App, out *bytes.Buffer) (*App, *bytes.Buffer) {
	t.Helper()
	out.Reset()
	return &App{
		VM:   viewmodel.New(app.VM.Settings(), theme.WithDetector(theme.StaticDetector(false))),
		Out:  out,
		Err:  out,
		JSON: app.JSON,
	}, out
}
