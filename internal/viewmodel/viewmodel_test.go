package viewmodel

import (
	"path/filepath"
	"testing"

	"mash/internal/settings/memstore"
	"mash/internal/settings/sqlitestore"
	"mash/internal/theme"
)

func TestViewModel_SharesStoreWithTheme(t *testing.T) {
	store, err := memstore.New("viewmodel.shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { memstore.Drop("viewmodel.shared") })

	vm := New(store, theme.WithDetector(theme.StaticDetector(false)))
	if vm.Settings() != store {
		t.Error("Settings() should return the wrapped store")
	}
	if err := vm.Theme().SelectTheme(theme.Midnight); err != nil {
		t.Fatal(err)
	}

	v, err := vm.Settings().GetString(theme.Key, "")
	if err != nil {
		t.Fatal(err)
	}
	if v != "midnight" {
		t.Errorf("store value for %s = %q, want %q", theme.Key, v, "midnight")
	}

	// Other consumers' keys live alongside the theme key.
	if err := vm.Settings().PutString("player.count", "4"); err != nil {
		t.Fatal(err)
	}
	if vm.Theme().Current() != theme.Midnight {
		t.Error("unrelated writes should not affect the theme")
	}
	if err := vm.Close(); err != nil {
		t.Errorf("Close() on a memstore = %v, want nil", err)
	}
}

func TestViewModel_ClosesClosableStore(t *testing.T) {
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), sqlitestore.FileName), "prefs", nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := New(store)
	if err := vm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.PutString("k", "v"); err == nil {
		t.Error("store should be unusable after ViewModel.Close")
	}
}
