package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
)

// inventory make:migration
func newMakeMigrationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make:migration <name>",
		Short: "Create a new migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(args[0]), " ", "_"))
			name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102150405"), slug)

			content, err := renderStub("migration", StubData{Name: name, StructName: camel(slug)})
			if err != nil {
				return err
			}
			return writeStub(cmd.OutOrStdout(), filepath.Join("database", "migrations", name+".go"), content)
		},
	}
}

// inventory make:seeder
func newMakeSeederCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make:seeder <Name>",
		Short: "Scaffold a new seeder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := camel(args[0])
			lower := strings.ToLower(name)

			content, err := renderStub("seeder", StubData{Name: name, Lower: lower})
			if err != nil {
				return err
			}
			return writeStub(cmd.OutOrStdout(), filepath.Join("database", "seeders", lower+".go"), content)
		},
	}
}

// camel turns "add_sku to-products" into "AddSkuToProducts".
func camel(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func writeStub(out io.Writer, path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created: %s\n", path)
	return nil
}
