package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/inventory/internal/kernel"
	"github.com/shashiranjanraj/inventory/internal/server"
	"github.com/shashiranjanraj/inventory/pkg/router"
	"github.com/shashiranjanraj/inventory/pkg/ws"
)

// inventory serve
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run", "start"},
		Short:   "Run pending migrations and start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Start(cmd.Context())
		},
	}
}

// inventory route:list
func newRouteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List all registered named routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := router.New()
			if err := kernel.Routes(r, nil, ws.NewHub()); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range r.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}
