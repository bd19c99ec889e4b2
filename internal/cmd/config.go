package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"mash/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the mash config file",
		Long: `Manage the mash config file.

The config file picks the settings backend, domain and directory, and the
log level. Environment variables and flags override it.

Subcommands:
  init  Write a config file with the defaults
  show  Print the effective configuration`,
	}

	cmd.AddCommand(newConfigInitCmd(provider))
	cmd.AddCommand(newConfigShowCmd(provider))

	return cmd
}

// configPath resolves the config file the same way App initialization does.
func configPath(provider *AppProvider) string {
	if provider.ConfigPath != "" {
		return provider.ConfigPath
	}
	return config.Path()
}

// newConfigInitCmd creates the "config init" subcommand.
// Note: init doesn't use the provider's App so a broken config can be replaced.
func newConfigInitCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Long: `Write the default configuration to the config file. A path ending in
.toml is written as TOML.

Examples:
  mash config init
  mash --config ~/mash.toml config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(provider)
			if _, err := os.Stat(path); err == nil {
				if !force {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
				}
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking config file: %w", err)
			}

			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			out := provider.Out
			if out == nil {
				out = os.Stdout
			}
			if provider.JSONOutput {
				return json.NewEncoder(out).Encode(map[string]string{"path": path})
			}
			fmt.Fprintf(out, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// newConfigShowCmd creates the "config show" subcommand.
func newConfigShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file, environment variables
and flags have been applied.

Examples:
  mash config show
  mash --backend sqlite config show --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(app.Config)
			}
			data, err := yaml.Marshal(app.Config)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = app.Out.Write(data)
			return err
		},
	}

	return cmd
}
