package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"mash/internal/config"
	"mash/internal/storefactory"
	"mash/internal/theme"
	"mash/internal/viewmodel"

	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	ConfigPath string
	Backend    string
	Domain     string
	Dir        string
	LogLevel   string
	JSONOutput bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// Close releases the App's settings store if it was initialized.
func (p *AppProvider) Close() error {
	if p.app == nil || p.app.VM == nil {
		return nil
	}
	return p.app.VM.Close()
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app:        app,
		JSONOutput: app.JSON,
		Out:        app.Out,
		Err:        app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	path := p.ConfigPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnvOverrides(&cfg)
	p.applyFlags(&cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	logger := cfg.NewLogger(errOut)
	store, err := storefactory.CreateStore(cfg.StoreOptions(logger))
	if err != nil {
		return nil, err
	}

	return &App{
		VM:     viewmodel.New(store, theme.WithLogger(logger)),
		Config: cfg,
		Logger: logger,
		Out:    out,
		Err:    errOut,
		JSON:   p.JSONOutput,
	}, nil
}

// applyFlags lets explicit flags win over the config file and environment.
func (p *AppProvider) applyFlags(cfg *config.Config) {
	if p.Backend != "" {
		cfg.Settings.Backend = p.Backend
	}
	if p.Domain != "" {
		cfg.Settings.Domain = p.Domain
	}
	if p.Dir != "" {
		cfg.Settings.Dir = p.Dir
	}
	if p.LogLevel != "" {
		cfg.Log.Level = p.LogLevel
	}
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	defer provider.Close()

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mash",
		Short: "Settings and theme tool for the MASH party game",
		Long: fmt.Sprintf(`mash reads and writes the MASH app's persistent settings and theme.

Settings live in a named domain (default %s) held by a
platform backend: the user defaults system on macOS, a YAML file under
$XDG_CONFIG_HOME/mash elsewhere. Other backends: %v.`,
			storefactory.DefaultDomain, storefactory.Backends()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	flags.StringVar(&provider.ConfigPath, "config", "", "Path to config.yaml (default: $MASH_CONFIG or $XDG_CONFIG_HOME/mash/config.yaml)")
	flags.StringVar(&provider.Backend, "backend", "", "Settings backend (default: platform backend)")
	flags.StringVar(&provider.Domain, "domain", "", "Settings domain")
	flags.StringVar(&provider.Dir, "dir", "", "Directory for file-backed settings")
	flags.StringVar(&provider.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newSettingsCmd(provider))
	rootCmd.AddCommand(newThemeCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}
