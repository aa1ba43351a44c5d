package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ordersync/internal/kernel"
	"github.com/shashiranjanraj/ordersync/internal/server"
)

// ordersync serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API with in-process queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// ordersync route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes are mounted without touching any dependency, so an empty
		// kernel is enough to enumerate them.
		infos := (&kernel.Kernel{}).Router().Routes()
		if len(infos) == 0 {
			printInfo(cmd.OutOrStdout(), "no named routes registered")
			return nil
		}
		renderRoutes(cmd.OutOrStdout(), infos)
		return nil
	},
}
