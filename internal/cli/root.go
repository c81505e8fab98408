// Package cli wires the kbctl command tree: scriptable catalog commands
// plus the interactive browser when invoked with no subcommand.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/internal/config"
	"github.com/productkb/kbctl/internal/tui"
)

// App carries state shared by every command. The configuration and logger
// are populated by the root PersistentPreRunE before any RunE fires.
type App struct {
	ConfigPath string
	Backend    string
	BaseURL    string
	DataDir    string

	cfg    *config.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kbctl",
		Short:        "Browse and edit the product catalog",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive browser
  kbctl

  # Scriptable commands
  kbctl search widget
  kbctl add --gen-id --name "Widget" --tags tools,metal

  # Work against the local database instead of the API
  kbctl --backend local search
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive browser.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		// Flags beat both the file and the environment.
		if app.Backend != "" {
			cfg.Set("backend", app.Backend)
		}
		if app.BaseURL != "" {
			cfg.Set("base_url", app.BaseURL)
		}
		if app.DataDir != "" {
			cfg.Set("data_dir", app.DataDir)
		}
		app.cfg = cfg

		settings, err := cfg.Settings()
		if err != nil {
			return err
		}
		logger, err := newLogger(settings.LogFile)
		if err != nil {
			return err
		}
		app.logger = logger
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config file (default: kbctl.yaml in . or the user config dir)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Backend to use: remote or local")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Remote API root (remote backend)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", "", "Local database directory (local backend)")

	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newGetCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newPingCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// open binds the configured backend. The returned close function must be
// called when the command is done with the repository.
func (app *App) open() (catalog.Repository, *catalog.Uploader, *config.Settings, func() error, error) {
	settings, err := app.cfg.Settings()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	repo, closer, err := catalog.Open(settings, app.logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var uploader *catalog.Uploader
	if settings.Backend == config.BackendRemote {
		uploader = catalog.NewUploader(settings.BaseURL, app.logger)
	}
	return repo, uploader, settings, closer, nil
}

func runTUI(app *App) error {
	repo, uploader, settings, closer, err := app.open()
	if err != nil {
		return err
	}
	defer closer()
	return tui.Run(repo, uploader, settings.PageSize, app.logger)
}

// newLogger builds the process logger. With no log file configured the
// logger is a no-op so nothing interleaves with command output or the
// browser's terminal.
func newLogger(logFile string) (*zap.Logger, error) {
	if logFile == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logFile}
	cfg.ErrorOutputPaths = []string{logFile}
	return cfg.Build()
}
