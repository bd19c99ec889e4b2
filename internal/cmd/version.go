package cmd

import (
	"encoding/json"
	"fmt"

	"mash/internal/storefactory"

	"github.com/spf13/cobra"
)

// Version is the current version of mash. It can be overridden at build
// time via -ldflags "-X mash/internal/cmd.Version=1.2.3".
var Version = "0.3.0"

func newVersionCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider.JSONOutput {
				return json.NewEncoder(provider.Out).Encode(map[string]string{
					"version": Version,
					"backend": storefactory.DefaultBackend(),
				})
			}
			fmt.Fprintf(provider.Out, "mash version %s (%s backend)\n", Version, storefactory.DefaultBackend())
			return nil
		},
	}
	return cmd
}
