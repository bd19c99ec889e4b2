package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mash/internal/settings"
)

func TestSettingsGet(t *testing.T) {
	app, out := setupTestApp(t)
	seedSettings(t, app, map[string]string{"player.count": "6"})

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"player.count"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings get failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "6" {
		t.Errorf("settings get player.count = %q, want %q", got, "6")
	}
}

func TestSettingsGet_NotSet(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"player.count"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings get failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "player.count (not set)" {
		t.Errorf("settings get missing = %q, want %q", got, "player.count (not set)")
	}
}

func TestSettingsGet_Default(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"player.count", "--default", "4"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings get failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "4" {
		t.Errorf("settings get --default = %q, want %q", got, "4")
	}
}

func TestSettingsGet_EmptyDefault(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"player.count", "--default", ""})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings get failed: %v", err)
	}

	if out.String() != "\n" {
		t.Errorf("settings get --default '' = %q, want a blank line", out.String())
	}
}

func TestSettingsGet_JSON(t *testing.T) {
	app, out := setupTestApp(t)
	app.JSON = true
	seedSettings(t, app, map[string]string{"k": "v"})

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"k"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings get failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if result["value"] != "v" || result["set"] != true {
		t.Errorf("unexpected JSON: %v", result)
	}
}

func TestSettingsGet_InvalidKey(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newSettingsGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{""})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestSettingsSet(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newSettingsSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"last_player", "Ada"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Set last_player = Ada" {
		t.Errorf("settings set output = %q", got)
	}
	value, err := app.VM.Settings().GetString("last_player", "")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if value != "Ada" {
		t.Errorf("stored value = %q, want %q", value, "Ada")
	}
}

func TestSettingsSet_Overwrites(t *testing.T) {
	app, _ := setupTestApp(t)
	seedSettings(t, app, map[string]string{"k": "old"})

	cmd := newSettingsSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"k", "new"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	if v, _ := app.VM.Settings().GetString("k", ""); v != "new" {
		t.Errorf("value after overwrite = %q, want %q", v, "new")
	}
}

func TestSettingsRm(t *testing.T) {
	app, out := setupTestApp(t)
	seedSettings(t, app, map[string]string{"k": "v"})

	cmd := newSettingsRmCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"k"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings rm failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Removed k" {
		t.Errorf("settings rm output = %q", got)
	}
	if _, ok, _ := app.VM.Settings().Lookup("k"); ok {
		t.Error("key should be gone after rm")
	}
}

func TestSettingsRm_Missing(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newSettingsRmCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"never-set"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings rm of a missing key should succeed: %v", err)
	}
}

func TestSettingsClear_RequiresForce(t *testing.T) {
	app, _ := setupTestApp(t)
	seedSettings(t, app, map[string]string{"k": "v"})

	cmd := newSettingsClearCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error without --force")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error should mention --force, got: %v", err)
	}
	if v, _ := app.VM.Settings().GetString("k", ""); v != "v" {
		t.Error("store should be untouched without --force")
	}
}

func TestSettingsClear(t *testing.T) {
	app, out := setupTestApp(t)
	seedSettings(t, app, map[string]string{"a": "1", "b": "2", "selected_theme": "neon"})

	cmd := newSettingsClearCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings clear failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "Cleared ") {
		t.Errorf("settings clear output = %q", out.String())
	}
	keys, err := app.VM.Settings().(settings.Lister).Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys after clear = %v, want none", keys)
	}
}

func TestSettingsList(t *testing.T) {
	app, out := setupTestApp(t)
	seedSettings(t, app, map[string]string{"b": "2", "a": "1"})

	cmd := newSettingsListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 entries, got %q", out.String())
	}
	if lines[1] != "  a = 1" || lines[2] != "  b = 2" {
		t.Errorf("entries not sorted by key: %q", lines[1:])
	}
}

func TestSettingsList_Empty(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newSettingsListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "No settings in ") {
		t.Errorf("settings list empty output = %q", out.String())
	}
}

func TestSettingsList_JSON(t *testing.T) {
	app, out := setupTestApp(t)
	app.JSON = true
	seedSettings(t, app, map[string]string{"a": "1", "b": "2"})

	cmd := newSettingsListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if len(result) != 2 || result["a"] != "1" || result["b"] != "2" {
		t.Errorf("unexpected JSON: %v", result)
	}
}

// keysOnly hides the one-pass read so list falls back to Keys and Lookup.
type keysOnly struct {
	settings.Store
	settings.Lister
}

func TestSettingsList_KeysFallback(t *testing.T) {
	app, out := setupTestApp(t)
	seedSettings(t, app, map[string]string{"b": "2", "a": "1"})

	store := app.VM.Settings()
	all, err := readAll(keysOnly{Store: store, Lister: store.(settings.Lister)})
	if err != nil {
		t.Fatalf("readAll failed: %v", err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Errorf("readAll = %v", all)
	}
	if out.Len() != 0 {
		t.Errorf("readAll wrote output: %q", out.String())
	}
}

func TestSettingsList_NotListable(t *testing.T) {
	app, _ := setupTestApp(t)

	_, err := readAll(struct{ settings.Store }{app.VM.Settings()})
	if !errors.Is(err, errNotListable) {
		t.Errorf("readAll on a bare store = %v, want errNotListable", err)
	}
}
