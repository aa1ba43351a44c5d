// Command ordersync is the operator CLI for the snapshot sync engine.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations and seeders register themselves in init().
	_ "github.com/shashiranjanraj/ordersync/database/migrations"
	_ "github.com/shashiranjanraj/ordersync/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ordersync",
	Short:         "Keep order snapshots in step with their products",
	Long:          "ordersync copies resolved product attributes onto the orders that reference them and audits the result.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Sync engine
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(auditCmd)

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(scheduleRunCmd)
}

// exitError ends the process with code after the command has already
// printed its report.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
