package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mash/internal/settings"
	"mash/internal/settings/settingstest"
)

func TestContract(t *testing.T) {
	root := t.TempDir()
	settingstest.RunContractTests(t, func(t *testing.T, domain string) settings.Store {
		s, err := New(root, domain, nil)
		if err != nil {
			t.Fatalf("New(%q): %v", domain, err)
		}
		return s
	})
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "prefs", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_InvalidDomain(t *testing.T) {
	_, err := New(t.TempDir(), "", nil)
	if !errors.Is(err, settings.ErrInvalidDomain) {
		t.Errorf("New(\"\") error = %v, want ErrInvalidDomain", err)
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	root := t.TempDir()
	if _, err := New(root, "prefs", nil); err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "prefs"))
	if err != nil {
		t.Fatalf("domain directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("domain path is not a directory")
	}
}

func TestKeyWithPathSeparatorStaysInDomain(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutString("../escape", "v"); err != nil {
		t.Fatalf("PutString: %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("domain directory has %d entries, want 1", len(entries))
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.Dir()), "escape")); !os.IsNotExist(err) {
		t.Error("key with path separator escaped the domain directory")
	}
}

func TestKeys_IgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutString("valid", "v"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "readme.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "valid" {
		t.Errorf("Keys = %v, want [valid]", keys)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "readme.txt")); err != nil {
		t.Errorf("Clear removed a foreign file: %v", err)
	}
}

func TestCorruptEntryIsStorageFault(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.keyPath("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := s.Lookup("k")
	if !errors.Is(err, settings.ErrStorage) {
		t.Errorf("Lookup error = %v, want ErrStorage", err)
	}
	var se *settings.StorageError
	if errors.As(err, &se) && se.Key != "k" {
		t.Errorf("StorageError.Key = %q, want %q", se.Key, "k")
	}
}

func TestNoTempFilesRemain(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutString("k", "v"); err != nil {
		t.Fatalf("PutString: %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			t.Errorf("unexpected file: %s (temp file not cleaned up?)", e.Name())
		}
	}
}

func TestNonUTF8IsRejectedBeforeWriting(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutString("k", "\xff\xfe"); !errors.Is(err, settings.ErrInvalidValue) {
		t.Errorf("PutString(non-UTF-8 value) error = %v, want ErrInvalidValue", err)
	}
	if err := s.PutString("\xffkey", "v"); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("PutString(non-UTF-8 key) error = %v, want ErrInvalidKey", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("rejected writes left files behind: %v", names)
	}
}
