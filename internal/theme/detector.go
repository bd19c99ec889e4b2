package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// EnvColorScheme overrides host colour-scheme detection ("dark" or "light").
const EnvColorScheme = "MASH_COLOR_SCHEME"

// SchemeDetector reports the host's light/dark preference.
type SchemeDetector interface {
	// Name returns a human-readable name for this detector.
	Name() string

	// Detect returns whether the host prefers dark, and whether detection
	// succeeded at all.
	Detect() (prefersDark bool, ok bool)
}

// EnvDetector reads the preference from an environment variable.
type EnvDetector struct {
	Var string // defaults to EnvColorScheme
}

func (d EnvDetector) Name() string { return "env" }

func (d EnvDetector) Detect() (bool, bool) {
	name := d.Var
	if name == "" {
		name = EnvColorScheme
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "dark":
		return true, true
	case "light":
		return false, true
	default:
		return false, false
	}
}

// TerminalDetector asks the terminal for its background colour. It only
// answers when stdout is a terminal, since the query needs one.
type TerminalDetector struct {
	Out *os.File // defaults to os.Stdout
}

func (d TerminalDetector) Name() string { return "terminal" }

func (d TerminalDetector) Detect() (bool, bool) {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	if !term.IsTerminal(int(out.Fd())) {
		return false, false
	}
	return lipgloss.HasDarkBackground(), true
}

// StaticDetector always reports the same preference.
type StaticDetector bool

func (d StaticDetector) Name() string { return "static" }

func (d StaticDetector) Detect() (bool, bool) { return bool(d), true }

// Chain asks each detector in order and uses the first answer. With no
// answer the host is assumed to prefer light.
type Chain []SchemeDetector

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c Chain) Detect() (bool, bool) {
	for _, d := range c {
		if dark, ok := d.Detect(); ok {
			return dark, true
		}
	}
	return false, false
}

// DefaultDetector checks MASH_COLOR_SCHEME, then the terminal.
func DefaultDetector() SchemeDetector {
	return Chain{EnvDetector{}, TerminalDetector{}}
}
