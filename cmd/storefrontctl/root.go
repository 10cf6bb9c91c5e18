package main

import (
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/spf13/cobra"
)

const serviceName = "storefront"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configFile  string
	envFile     string
	databaseURL string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "storefrontctl",
		Short:        "Manage the storefront catalog database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "config.yaml", "path to the YAML configuration")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to the .env file")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL, overrides database.url")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newMigrateCmd(opts), newSeedCmd(opts), newQueryCmd(opts), newWatchCmd(opts))
	return root
}

// load reads the service configuration and applies the flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := configloader.LoadWithOptions[*config.Config](serviceName, configloader.Options{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.databaseURL != "" {
		cfg.Database.URL = o.databaseURL
	}
	return cfg, nil
}

// requireDatabase loads the configuration and checks that a database is configured.
func (o *globalOptions) requireDatabase() (*config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	return bootstrap.NewLoggerTo(cmd.ErrOrStderr(), o.logLevel)
}
