// Package cmd implements the mash command-line interface.
package cmd

import (
	"io"
	"log/slog"
	"os"

	"mash/internal/config"
	"mash/internal/viewmodel"

	"golang.org/x/term"
)

// App holds application state shared across commands.
type App struct {
	VM     *viewmodel.ViewModel
	Config config.Config
	Logger *slog.Logger
	Out    io.Writer
	Err    io.Writer
	JSON   bool // output in JSON format
}

// colorEnabled reports whether Out is a terminal.
func (a *App) colorEnabled() bool {
	f, ok := a.Out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if a.colorEnabled() {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if a.colorEnabled() {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}
