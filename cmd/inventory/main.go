package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registered through init().
	_ "github.com/shashiranjanraj/inventory/database/migrations"
	_ "github.com/shashiranjanraj/inventory/database/seeders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Inventory catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Server
	root.AddCommand(newServeCmd())
	root.AddCommand(newRouteListCmd())

	// Database
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newMigrateRollbackCmd())
	root.AddCommand(newMigrateStatusCmd())
	root.AddCommand(newSeedCmd())

	// Catalog
	root.AddCommand(newCatalogExportCmd())
	root.AddCommand(newCatalogImportCmd())

	// Scaffolding
	root.AddCommand(newMakeMigrationCmd())
	root.AddCommand(newMakeSeederCmd())
	return root
}
