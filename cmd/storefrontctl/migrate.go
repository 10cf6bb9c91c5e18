package main

import (
	"fmt"

	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect catalog schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, opts, true)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, opts, false)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.requireDatabase()
				if err != nil {
					return err
				}
				version, dirty, err := bootstrap.MigrationVersion(cfg.Database.MigrationsPath, cfg.Database.URL)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
				return err
			},
		},
	)
	return cmd
}

func runMigrate(cmd *cobra.Command, opts *globalOptions, up bool) error {
	cfg, err := opts.requireDatabase()
	if err != nil {
		return err
	}
	direction := "up"
	if !up {
		direction = "down"
	}
	opts.logger(cmd).InfoContext(cmd.Context(), "Running migrations", "direction", direction, "source", cfg.Database.MigrationsPath)
	if err := bootstrap.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL, up); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", direction)
	return err
}
