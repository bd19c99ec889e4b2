package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"mash/internal/observable"
	"mash/internal/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newThemeCmd creates the theme command with subcommands.
func newThemeCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the app theme",
		Long: fmt.Sprintf(`Show or change the app theme.

The selection is stored under the %q setting. The system theme
follows the host's light or dark preference; set %s=dark|light to
override what the host reports.

Subcommands:
  show  Show the current theme
  set   Select a theme
  list  List available themes`, theme.Key, theme.EnvColorScheme),
	}

	cmd.AddCommand(newThemeShowCmd(provider))
	cmd.AddCommand(newThemeSetCmd(provider))
	cmd.AddCommand(newThemeListCmd(provider))

	return cmd
}

type themeJSON struct {
	Theme      string `json:"theme"`
	Appearance string `json:"appearance"`
	Dark       bool   `json:"dark"`
	Current    bool   `json:"current,omitempty"`
}

func newThemeShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			mgr := app.VM.Theme()
			t := mgr.Current()
			dark := mgr.IsDarkTheme()

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(themeJSON{
					Theme:      t.String(),
					Appearance: t.Appearance().String(),
					Dark:       dark,
				})
			}

			fmt.Fprintf(app.Out, "Theme: %s (%s)\n", t, lightOrDark(dark))
			if app.colorEnabled() {
				fmt.Fprintf(app.Out, "  %s\n", swatch(mgr.Palette()))
			}
			return nil
		},
	}
	return cmd
}

func newThemeSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <theme>",
		Short: "Select a theme",
		Long: fmt.Sprintf(`Select and persist a theme.

Available themes: %s

Examples:
  mash theme set midnight
  mash theme set system`, joinThemes(theme.All())),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			t, err := theme.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, joinThemes(theme.All()))
			}

			mgr := app.VM.Theme()
			var change *observable.Change[theme.Theme]
			unsubscribe := mgr.Subscribe(func(c observable.Change[theme.Theme]) {
				change = &c
			})
			defer unsubscribe()

			if err := mgr.SelectTheme(t); err != nil {
				return fmt.Errorf("saving theme: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(themeJSON{
					Theme:      t.String(),
					Appearance: t.Appearance().String(),
					Dark:       mgr.IsDarkTheme(),
				})
			}

			if change == nil {
				fmt.Fprintf(app.Out, "Theme already %s\n", t)
				return nil
			}
			fmt.Fprintf(app.Out, "%s theme: %s -> %s\n", app.SuccessColor("Changed"), change.Old, change.New)
			return nil
		},
	}
	return cmd
}

func newThemeListCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			mgr := app.VM.Theme()
			current := mgr.Current()

			var rows []themeJSON
			for _, t := range theme.All() {
				dark := t.Appearance() == theme.ForceDark
				if t == current {
					dark = mgr.IsDarkTheme()
				}
				rows = append(rows, themeJSON{
					Theme:      t.String(),
					Appearance: t.Appearance().String(),
					Dark:       dark,
					Current:    t == current,
				})
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(rows)
			}

			for _, r := range rows {
				marker := " "
				if r.Current {
					marker = "*"
				}
				fmt.Fprintf(app.Out, "%s %-9s %s", marker, r.Theme, r.Appearance)
				if app.colorEnabled() {
					fmt.Fprintf(app.Out, "  %s", swatch(theme.Theme(r.Theme).Palette(r.Dark)))
				}
				fmt.Fprintln(app.Out)
			}
			return nil
		},
	}
	return cmd
}

// swatch renders one block per palette colour.
func swatch(p theme.Palette) string {
	block := func(c lipgloss.Color) string {
		return lipgloss.NewStyle().Background(c).Render("  ")
	}
	return block(p.Primary) + block(p.Secondary) + block(p.Background) + block(p.Surface) + block(p.Text)
}

func lightOrDark(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func joinThemes(ts []theme.Theme) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
