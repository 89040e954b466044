package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/database/seeders"
	"github.com/shashiranjanraj/inventory/internal/kernel"
	"github.com/shashiranjanraj/inventory/pkg/migration"
)

// withRunner opens the database and hands a migration runner that reports
// to the command's output.
func withRunner(cmd *cobra.Command, fn func(*migration.Runner) error) error {
	k, err := kernel.BootDB(cmd.Context())
	if err != nil {
		return err
	}
	defer k.Close()
	return fn(migration.NewWith(k.DB, cmd.OutOrStdout(), migration.Registered()))
}

// inventory migrate
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(r *migration.Runner) error {
				_, err := r.Run(cmd.Context())
				return err
			})
		},
	}
}

// inventory migrate:rollback
func newMigrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Rollback the last batch of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(r *migration.Runner) error {
				_, err := r.Rollback(cmd.Context())
				return err
			})
		},
	}
}

// inventory migrate:status
func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(r *migration.Runner) error {
				return r.Status(cmd.Context())
			})
		},
	}
}

// inventory seed
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Run all database seeders",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kernel.BootDB(cmd.Context())
			if err != nil {
				return err
			}
			defer k.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(cmd.Context(), k.DB, cmd.OutOrStdout())
		},
	}
}
