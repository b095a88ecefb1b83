package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/takak2166/bookstack-export/internal/bookstack"
	"github.com/takak2166/bookstack-export/internal/config"
	"github.com/takak2166/bookstack-export/internal/logger"
)

// appContext holds what every subcommand needs after startup
type appContext struct {
	envFile string
	cfg     *config.Config
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "bookstack-export",
		Short:         "Export BookStack pages to local files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")

	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newExportCommand(app))

	return rootCmd
}

// needsConfig reports whether cmd is a stage; the bare root and help only print usage
func needsConfig(cmd *cobra.Command) bool {
	return cmd != cmd.Root() && cmd.Name() != "help"
}

// setup loads the environment, configuration and logger once per invocation
func (a *appContext) setup() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.SetOutput(os.Stderr)
	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info(fmt.Sprintf("The URL of your BookStack instance is %q", cfg.BookstackURL))
	a.cfg = cfg
	return nil
}

func (a *appContext) client() (*bookstack.Client, error) {
	return bookstack.New(a.cfg.BookstackURL, a.cfg.TokenID, a.cfg.TokenSecret,
		bookstack.WithTimeout(a.cfg.HTTPTimeout))
}
