// Package settingstest provides the behavioural contract every
// settings.Store backend must satisfy.
package settingstest

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"mash/internal/settings"
)

// Factory opens a store bound to domain. Calling it twice with the same
// domain must yield two stores over the same underlying bucket.
type Factory func(t *testing.T, domain string) settings.Store

// RunContractTests runs the full contract test suite against a Store
// implementation. Each backend calls this with its own factory so all
// backends behave the same way.
func RunContractTests(t *testing.T, factory Factory) {
	t.Run("GetMissingReturnsDefault", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("PutThenGet", func(t *testing.T) { testPutThenGet(t, factory) })
	t.Run("PutOverwrites", func(t *testing.T) { testPutOverwrites(t, factory) })
	t.Run("EmptyValue", func(t *testing.T) { testEmptyValue(t, factory) })
	t.Run("OpaqueKeys", func(t *testing.T) { testOpaqueKeys(t, factory) })
	t.Run("OpaqueValues", func(t *testing.T) { testOpaqueValues(t, factory) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, factory) })
	t.Run("RemoveMissing", func(t *testing.T) { testRemoveMissing(t, factory) })
	t.Run("Clear", func(t *testing.T) { testClear(t, factory) })
	t.Run("ClearEmpty", func(t *testing.T) { testClearEmpty(t, factory) })
	t.Run("ClearLeavesOtherDomains", func(t *testing.T) { testClearOtherDomains(t, factory) })
	t.Run("SharedDomain", func(t *testing.T) { testSharedDomain(t, factory) })
	t.Run("InvalidKey", func(t *testing.T) { testInvalidKey(t, factory) })
	t.Run("InvalidValue", func(t *testing.T) { testInvalidValue(t, factory) })
	t.Run("Keys", func(t *testing.T) { testKeys(t, factory) })
	t.Run("All", func(t *testing.T) { testAll(t, factory) })
}

func mustPut(t *testing.T, s settings.Store, key, value string) {
	t.Helper()
	if err := s.PutString(key, value); err != nil {
		t.Fatalf("PutString(%q, %q): %v", key, value, err)
	}
}

func wantValue(t *testing.T, s settings.Store, key, def, want string) {
	t.Helper()
	got, err := s.GetString(key, def)
	if err != nil {
		t.Fatalf("GetString(%q): %v", key, err)
	}
	if got != want {
		t.Errorf("GetString(%q, %q) = %q, want %q", key, def, got, want)
	}
}

func wantAbsent(t *testing.T, s settings.Store, key string) {
	t.Helper()
	v, ok, err := s.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", key, err)
	}
	if ok {
		t.Errorf("Lookup(%q) = %q, true; want absent", key, v)
	}
}

func testGetMissing(t *testing.T, factory Factory) {
	s := factory(t, "contract.missing")

	wantValue(t, s, "never-written", "fallback", "fallback")
	wantValue(t, s, "never-written", "", "")
	wantAbsent(t, s, "never-written")
}

func testPutThenGet(t *testing.T, factory Factory) {
	s := factory(t, "contract.put")

	mustPut(t, s, "selected_theme", "midnight")
	wantValue(t, s, "selected_theme", "anything", "midnight")

	v, ok, err := s.Lookup("selected_theme")
	if err != nil || !ok || v != "midnight" {
		t.Errorf("Lookup = %q, %v, %v; want %q, true, nil", v, ok, err, "midnight")
	}
}

func testPutOverwrites(t *testing.T, factory Factory) {
	s := factory(t, "contract.overwrite")

	mustPut(t, s, "k", "v1")
	mustPut(t, s, "k", "v2")
	wantValue(t, s, "k", "", "v2")
}

func testEmptyValue(t *testing.T, factory Factory) {
	s := factory(t, "contract.empty")

	mustPut(t, s, "k", "")
	v, ok, err := s.Lookup("k")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || v != "" {
		t.Errorf("Lookup = %q, %v; want empty string present", v, ok)
	}
	wantValue(t, s, "k", "default", "")
}

func testOpaqueKeys(t *testing.T, factory Factory) {
	s := factory(t, "contract.opaque")

	keys := map[string]string{
		"dotted.key.name": "1",
		"with/slash":      "2",
		"with space":      "3",
		"UPPER":           "4",
		"upper":           "5",
		"unicode-ключ-🎉": "6",
		"colon:key":       "7",

		// Keys that mean something to YAML or other encodings.
		"<<":          "8",
		"null":        "9",
		"~":           "10",
		"?":           "11",
		"-":           "12",
		"true":        "13",
		"&anchor":     "14",
		"*alias":      "15",
		"!tag":        "16",
		"# comment":   "17",
		" padded ":    "18",
		"multi\nline": "19",
		"tab\tkey":    "20",
		`"quoted"`:    "21",
		"<xml>&amp;":  "22",
	}
	for k, v := range keys {
		mustPut(t, s, k, v)
	}
	for k, v := range keys {
		wantValue(t, s, k, "", v)
	}

	if l, ok := s.(settings.Lister); ok {
		got, err := l.Keys()
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		if len(got) != len(keys) {
			t.Errorf("Keys returned %d keys, want %d: %q", len(got), len(keys), got)
		}
		for _, k := range got {
			if _, ok := keys[k]; !ok {
				t.Errorf("Keys returned unexpected key %q", k)
			}
		}
	}
}

func testOpaqueValues(t *testing.T, factory Factory) {
	s := factory(t, "contract.values")

	values := []string{
		"line one\nline two: with colon",
		"<<",
		"null",
		"~",
		"true",
		"0x1F",
		"*alias",
		"  spaced  ",
		"trailing newline\n",
		`{"json": [1, 2]}`,
		"ünïcødé 🎉",
	}
	for i, v := range values {
		key := fmt.Sprintf("v%d", i)
		mustPut(t, s, key, v)
		wantValue(t, s, key, "", v)
	}
}

func testRemove(t *testing.T, factory Factory) {
	s := factory(t, "contract.remove")

	mustPut(t, s, "k", "v")
	mustPut(t, s, "other", "stays")
	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	wantValue(t, s, "k", "d", "d")
	wantAbsent(t, s, "k")
	wantValue(t, s, "other", "", "stays")
}

func testRemoveMissing(t *testing.T, factory Factory) {
	s := factory(t, "contract.removemissing")

	if err := s.Remove("nonexistent"); err != nil {
		t.Errorf("Remove(nonexistent) = %v, want nil", err)
	}
}

func testClear(t *testing.T, factory Factory) {
	s := factory(t, "contract.clear")

	written := []string{"a", "b", "selected_theme"}
	for _, k := range written {
		mustPut(t, s, k, "v-"+k)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range written {
		wantValue(t, s, k, "d", "d")
	}

	// The store stays usable after Clear.
	mustPut(t, s, "a", "again")
	wantValue(t, s, "a", "", "again")
}

func testClearEmpty(t *testing.T, factory Factory) {
	s := factory(t, "contract.clearempty")

	if err := s.Clear(); err != nil {
		t.Errorf("Clear on empty store = %v, want nil", err)
	}
}

func testClearOtherDomains(t *testing.T, factory Factory) {
	a := factory(t, "contract.domain-a")
	b := factory(t, "contract.domain-b")

	mustPut(t, a, "k", "from-a")
	mustPut(t, b, "k", "from-b")
	wantValue(t, a, "k", "", "from-a")

	if err := a.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	wantAbsent(t, a, "k")
	wantValue(t, b, "k", "", "from-b")
}

func testSharedDomain(t *testing.T, factory Factory) {
	s1 := factory(t, "contract.shared")
	s2 := factory(t, "contract.shared")

	if s1.Domain() != "contract.shared" || s2.Domain() != "contract.shared" {
		t.Errorf("Domain() = %q, %q; want contract.shared", s1.Domain(), s2.Domain())
	}

	mustPut(t, s1, "k", "v1")
	wantValue(t, s2, "k", "", "v1")

	mustPut(t, s2, "k", "v2")
	wantValue(t, s1, "k", "", "v2")

	if err := s1.Remove("k"); err != nil {
		t.Fatal(err)
	}
	wantAbsent(t, s2, "k")
}

func testInvalidKey(t *testing.T, factory Factory) {
	s := factory(t, "contract.invalid")

	if err := s.PutString("", "v"); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("PutString(\"\") error = %v, want ErrInvalidKey", err)
	}
	if _, _, err := s.Lookup(""); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("Lookup(\"\") error = %v, want ErrInvalidKey", err)
	}
	if err := s.Remove(""); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("Remove(\"\") error = %v, want ErrInvalidKey", err)
	}

	// Invalid UTF-8 could not be stored faithfully by every backend.
	if err := s.PutString("\xffkey", "v"); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("PutString(non-UTF-8 key) error = %v, want ErrInvalidKey", err)
	}
	if _, _, err := s.Lookup("\xffkey"); !errors.Is(err, settings.ErrInvalidKey) {
		t.Errorf("Lookup(non-UTF-8 key) error = %v, want ErrInvalidKey", err)
	}
}

func testInvalidValue(t *testing.T, factory Factory) {
	s := factory(t, "contract.invalidvalue")

	for _, v := range []string{"\xff\xfe", "ok\x00nul"} {
		if err := s.PutString("k", v); !errors.Is(err, settings.ErrInvalidValue) {
			t.Errorf("PutString(k, %q) error = %v, want ErrInvalidValue", v, err)
		}
	}
	wantAbsent(t, s, "k")

	// A rejected write leaves the previous value alone.
	mustPut(t, s, "k", "good")
	if err := s.PutString("k", "\xff"); !errors.Is(err, settings.ErrInvalidValue) {
		t.Errorf("PutString(k, \"\\xff\") error = %v, want ErrInvalidValue", err)
	}
	wantValue(t, s, "k", "", "good")
}

func testKeys(t *testing.T, factory Factory) {
	s := factory(t, "contract.keys")
	l, ok := s.(settings.Lister)
	if !ok {
		t.Skip("store does not implement settings.Lister")
	}

	keys, err := l.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys on empty store = %v, want empty", keys)
	}

	for _, k := range []string{"c", "a", "b.sub"} {
		mustPut(t, s, k, "v")
	}
	keys, err = l.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"a", "b.sub", "c"}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Keys = %v, want sorted", keys)
	}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func testAll(t *testing.T, factory Factory) {
	s := factory(t, "contract.all")
	snap, ok := s.(settings.Snapshotter)
	if !ok {
		t.Skip("store cannot read a whole domain")
	}

	all, err := snap.All()
	if err != nil {
		t.Fatalf("All() on empty domain: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("All() on empty domain = %v", all)
	}

	want := map[string]string{"a": "1", "<<": "merge", "empty": ""}
	for k, v := range want {
		mustPut(t, s, k, v)
	}
	all, err = snap.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(all) != len(want) {
		t.Fatalf("All() = %v, want %v", all, want)
	}
	for k, v := range want {
		if got, ok := all[k]; !ok || got != v {
			t.Errorf("All()[%q] = %q, %v; want %q", k, got, ok, v)
		}
	}

	// The map is a copy.
	all["a"] = "changed"
	wantValue(t, s, "a", "", "1")
}
