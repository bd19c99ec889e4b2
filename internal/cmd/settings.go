package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"mash/internal/settings"

	"github.com/spf13/cobra"
)

// errNotListable is returned by "settings list" for a backend that cannot
// enumerate its keys.
var errNotListable = errors.New("settings backend cannot list keys")

// newSettingsCmd creates the settings command with subcommands.
func newSettingsCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"prefs"},
		Short:   "Read and write persistent settings",
		Long: `Read and write the app's persistent settings.

Settings are flat string key-value pairs in a single domain. Keys are
opaque: dots and slashes carry no meaning.

Subcommands:
  get    Get a setting
  set    Set a setting
  rm     Remove a setting
  clear  Remove every setting in the domain
  list   List all settings`,
	}

	cmd.AddCommand(newSettingsGetCmd(provider))
	cmd.AddCommand(newSettingsSetCmd(provider))
	cmd.AddCommand(newSettingsRmCmd(provider))
	cmd.AddCommand(newSettingsClearCmd(provider))
	cmd.AddCommand(newSettingsListCmd(provider))

	return cmd
}

// newSettingsGetCmd creates the "settings get" subcommand.
func newSettingsGetCmd(provider *AppProvider) *cobra.Command {
	var defaultValue string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a setting",
		Long: `Get the value of a setting.

Prints the bare value if the key is set. If it is missing, prints the
--default value when one is given, or "key (not set)" otherwise.

Examples:
  mash settings get selected_theme
  mash settings get player.count --default 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			store := app.VM.Settings()
			value, ok, err := store.Lookup(key)
			if err != nil {
				return fmt.Errorf("getting %s: %w", key, err)
			}
			hasDefault := cmd.Flags().Changed("default")
			if !ok && hasDefault {
				value, err = store.GetString(key, defaultValue)
				if err != nil {
					return fmt.Errorf("getting %s: %w", key, err)
				}
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}

			if ok || hasDefault {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultValue, "default", "", "Value to print when the key is not set")

	return cmd
}

// newSettingsSetCmd creates the "settings set" subcommand.
func newSettingsSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long: `Set a key to a value, replacing any previous value.

Examples:
  mash settings set player.count 6
  mash settings set last_player "Ada"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := app.VM.Settings().PutString(key, value); err != nil {
				return fmt.Errorf("setting %s: %w", key, err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{
					"key":   key,
					"value": value,
				})
			}

			fmt.Fprintf(app.Out, "%s %s = %s\n", app.SuccessColor("Set"), key, value)
			return nil
		},
	}

	return cmd
}

// newSettingsRmCmd creates the "settings rm" subcommand.
func newSettingsRmCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"unset"},
		Short:   "Remove a setting",
		Long: `Remove a key. Removing a key that is not set succeeds.

Examples:
  mash settings rm player.count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.VM.Settings().Remove(key); err != nil {
				return fmt.Errorf("removing %s: %w", key, err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{
					"key":    key,
					"status": "removed",
				})
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.SuccessColor("Removed"), key)
			return nil
		},
	}

	return cmd
}

// newSettingsClearCmd creates the "settings clear" subcommand.
func newSettingsClearCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every setting in the domain",
		Long: `Remove every key in the current settings domain, including the
selected theme. Other domains are left alone.

Requires --force.

Examples:
  mash settings clear --force
  mash --domain com.mash.party.test settings clear --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			store := app.VM.Settings()
			if !force {
				return fmt.Errorf("refusing to clear domain %s without --force", store.Domain())
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clearing %s: %w", store.Domain(), err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{
					"domain": store.Domain(),
					"status": "cleared",
				})
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.WarnColor("Cleared"), store.Domain())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Actually clear the domain")

	return cmd
}

// newSettingsListCmd creates the "settings list" subcommand.
func newSettingsListCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Long: `List every key-value pair in the settings domain, sorted by key.

Examples:
  mash settings list
  mash settings list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			store := app.VM.Settings()
			all, err := readAll(store)
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(all)
			}

			if len(all) == 0 {
				fmt.Fprintf(app.Out, "No settings in %s\n", store.Domain())
				return nil
			}
			fmt.Fprintf(app.Out, "Settings (%s):\n", store.Domain())
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(app.Out, "  %s = %s\n", k, all[k])
			}
			return nil
		},
	}

	return cmd
}

// readAll reads every entry of the store's domain, in one pass when the
// backend supports it.
func readAll(store settings.Store) (map[string]string, error) {
	if snap, ok := store.(settings.Snapshotter); ok {
		all, err := snap.All()
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", store.Domain(), err)
		}
		return all, nil
	}

	lister, ok := store.(settings.Lister)
	if !ok {
		return nil, errNotListable
	}
	keys, err := lister.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", store.Domain(), err)
	}
	all := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := store.Lookup(k)
		if err != nil {
			return nil, fmt.Errorf("getting %s: %w", k, err)
		}
		// Removed by another writer since Keys.
		if !ok {
			continue
		}
		all[k] = v
	}
	return all, nil
}
