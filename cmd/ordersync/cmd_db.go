package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/database/seeders"
	"github.com/shashiranjanraj/ordersync/pkg/database"
	"github.com/shashiranjanraj/ordersync/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// ordersync migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ran, err := migration.New(database.DB).Run()
		out := cmd.OutOrStdout()
		for _, name := range ran {
			printOK(out, "migrated %s", name)
		}
		if err == nil && len(ran) == 0 {
			printInfo(out, "nothing to migrate")
		}
		return err
	},
}

// ordersync migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		rolled, err := migration.New(database.DB).Rollback()
		out := cmd.OutOrStdout()
		for _, name := range rolled {
			printOK(out, "rolled back %s", name)
		}
		if err == nil && len(rolled) == 0 {
			printInfo(out, "nothing to roll back")
		}
		return err
	},
}

// ordersync migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		statuses, err := migration.New(database.DB).Status()
		if err != nil {
			return err
		}
		renderMigrations(cmd.OutOrStdout(), statuses)
		return nil
	},
}

// ordersync seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ran, err := seeders.RunAll(database.DB)
		for _, name := range ran {
			printOK(cmd.OutOrStdout(), "seeded %s", name)
		}
		return err
	},
}
