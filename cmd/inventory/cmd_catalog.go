package main

import (
	"fmt"
	pathpkg "path"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/internal/kernel"
)

// inventory catalog:export
func newCatalogExportCmd() *cobra.Command {
	var (
		disk, path string
		force      bool
		keep       int
	)
	cmd := &cobra.Command{
		Use:   "catalog:export",
		Short: "Write the catalog as JSON to a storage disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kernel.Boot(cmd.Context())
			if err != nil {
				return err
			}
			defer k.Close()

			d, err := k.Storage.Disk(disk)
			if err != nil {
				return err
			}
			if path == "" {
				path = fmt.Sprintf("exports/catalog-%s.json", time.Now().UTC().Format("20060102150405"))
			}

			n, err := k.Catalog.Export(cmd.Context(), d, path, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, d.URL(path))

			if keep > 0 {
				removed, err := k.Catalog.PruneExports(cmd.Context(), d, pathpkg.Dir(path), keep)
				if err != nil {
					return err
				}
				for _, f := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed old export %s\n", f)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&disk, "disk", "", "storage disk (default STORAGE_DISK)")
	cmd.Flags().StringVar(&path, "path", "", "destination path on the disk")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file at --path")
	cmd.Flags().IntVar(&keep, "keep", 0, "after exporting, keep only the newest N exports in the destination directory (0 keeps all)")
	return cmd
}

// inventory catalog:import
func newCatalogImportCmd() *cobra.Command {
	var disk string
	cmd := &cobra.Command{
		Use:   "catalog:import <path>",
		Short: "Create products from a catalog:export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kernel.Boot(cmd.Context())
			if err != nil {
				return err
			}
			defer k.Close()

			d, err := k.Storage.Disk(disk)
			if err != nil {
				return err
			}
			n, err := k.Catalog.Import(cmd.Context(), d, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&disk, "disk", "", "storage disk (default STORAGE_DISK)")
	return cmd
}
