// mash reads and writes the MASH party game's settings and theme.
package main

import (
	"fmt"
	"os"

	"mash/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
