package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvDetector(t *testing.T) {
	tests := []struct {
		value    string
		wantDark bool
		wantOK   bool
	}{
		{"dark", true, true},
		{"DARK", true, true},
		{"light", false, true},
		{"", false, false},
		{"purple", false, false},
	}
	for _, tt := range tests {
		t.Setenv(EnvColorScheme, tt.value)
		dark, ok := EnvDetector{}.Detect()
		if dark != tt.wantDark || ok != tt.wantOK {
			t.Errorf("%s=%q: Detect() = %v, %v; want %v, %v",
				EnvColorScheme, tt.value, dark, ok, tt.wantDark, tt.wantOK)
		}
	}
}

func TestEnvDetector_CustomVar(t *testing.T) {
	t.Setenv("MY_SCHEME", "dark")
	dark, ok := EnvDetector{Var: "MY_SCHEME"}.Detect()
	if !dark || !ok {
		t.Errorf("Detect() = %v, %v; want true, true", dark, ok)
	}
}

func TestTerminalDetector_NotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, ok := (TerminalDetector{Out: f}).Detect(); ok {
		t.Error("TerminalDetector should not answer for a regular file")
	}
}

func TestChain(t *testing.T) {
	t.Setenv(EnvColorScheme, "")

	c := Chain{EnvDetector{}, StaticDetector(true)}
	dark, ok := c.Detect()
	if !dark || !ok {
		t.Errorf("Chain falling through to static = %v, %v; want true, true", dark, ok)
	}

	t.Setenv(EnvColorScheme, "light")
	dark, ok = c.Detect()
	if dark || !ok {
		t.Errorf("Chain with env answer = %v, %v; want false, true", dark, ok)
	}

	if _, ok := (Chain{}).Detect(); ok {
		t.Error("empty Chain should not answer")
	}

	if got := c.Name(); got != "chain(env,static)" {
		t.Errorf("Name() = %q", got)
	}
}
