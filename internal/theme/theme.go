// Package theme owns the app's visual theme choice: the set of theme
// variants, the dark/light decision for each, and the Manager that keeps
// the selected theme in the settings store.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme identifies a visual palette. Its string form is the stable
// identifier written to the settings store.
type Theme string

const (
	System   Theme = "system"   // follows the host's light/dark setting
	Light    Theme = "light"    // classic light palette
	Dark     Theme = "dark"     // classic dark palette
	Midnight Theme = "midnight" // deep blue, always dark
	Sunrise  Theme = "sunrise"  // warm pastel, always light
	Neon     Theme = "neon"     // arcade colours on black, always dark
)

// Default is the theme used when nothing valid has been stored.
const Default = System

// Key is the reserved settings key holding the selected theme.
const Key = "selected_theme"

// ErrUnknownTheme is returned for identifiers that match no variant.
var ErrUnknownTheme = errors.New("unknown theme")

// Appearance says how a theme decides between dark and light.
type Appearance int

const (
	FollowHost Appearance = iota
	ForceLight
	ForceDark
)

func (a Appearance) String() string {
	switch a {
	case ForceLight:
		return "light"
	case ForceDark:
		return "dark"
	default:
		return "host"
	}
}

// Palette holds the colours a theme renders with.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
}

type variant struct {
	appearance Appearance
	palette    Palette
}

// variants is ordered as All returns it.
var variants = []struct {
	theme Theme
	variant
}{
	{System, variant{FollowHost, Palette{}}},
	{Light, variant{ForceLight, Palette{
		Primary: "#6750A4", Secondary: "#625B71", Background: "#FFFBFE", Surface: "#F4EFF4", Text: "#1C1B1F",
	}}},
	{Dark, variant{ForceDark, Palette{
		Primary: "#D0BCFF", Secondary: "#CCC2DC", Background: "#1C1B1F", Surface: "#2B2930", Text: "#E6E1E5",
	}}},
	{Midnight, variant{ForceDark, Palette{
		Primary: "#7AA2F7", Secondary: "#BB9AF7", Background: "#0B1021", Surface: "#161C33", Text: "#C0CAF5",
	}}},
	{Sunrise, variant{ForceLight, Palette{
		Primary: "#E8736C", Secondary: "#F2B880", Background: "#FFF5EC", Surface: "#FDE8D7", Text: "#3D2C29",
	}}},
	{Neon, variant{ForceDark, Palette{
		Primary: "#39FF14", Secondary: "#FF2079", Background: "#000000", Surface: "#111111", Text: "#F5F5F5",
	}}},
}

// All returns every theme variant in display order.
func All() []Theme {
	out := make([]Theme, len(variants))
	for i, v := range variants {
		out[i] = v.theme
	}
	return out
}

// Parse decodes a stored identifier. Matching ignores case and
// surrounding whitespace.
func Parse(s string) (Theme, error) {
	id := Theme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lookup(id); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Valid reports whether t is a known variant.
func (t Theme) Valid() bool {
	_, ok := lookup(t)
	return ok
}

func (t Theme) String() string { return string(t) }

// Appearance returns how t decides between dark and light.
func (t Theme) Appearance() Appearance {
	v, _ := lookup(t)
	return v.appearance
}

// Palette returns t's colours. System has no palette of its own; it
// resolves to Dark's or Light's depending on dark.
func (t Theme) Palette(dark bool) Palette {
	if t.Appearance() == FollowHost {
		if dark {
			t = Dark
		} else {
			t = Light
		}
	}
	v, _ := lookup(t)
	return v.palette
}

func lookup(t Theme) (variant, bool) {
	for _, v := range variants {
		if v.theme == t {
			return v.variant, true
		}
	}
	return variant{}, false
}
