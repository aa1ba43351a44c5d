package main

import (
	"context"
	"errors"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/internal/kernel"
)

var (
	syncAllFlag         bool
	syncOnlyDriftedFlag bool
	syncJSONFlag        bool
)

// ordersync sync <id> | --all
var syncCmd = &cobra.Command{
	Use:   "sync [product-id]",
	Short: "Copy resolved product attributes onto its orders",
	Args:  oneIDOrAll(&syncAllFlag),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		opts := services.SyncOptions{OnlyDrifted: syncOnlyDriftedFlag}
		out := cmd.OutOrStdout()

		if syncAllFlag {
			run, err := k.Snapshot.SyncAll(ctx, opts)
			if syncJSONFlag {
				if jerr := printJSON(out, run); jerr != nil {
					return jerr
				}
			} else {
				renderRunReport(out, run)
			}
			if err != nil {
				return err
			}
			if !run.OK() {
				return &exitError{code: 1, msg: "sync finished with failures"}
			}
			return nil
		}

		rep, err := k.Snapshot.SyncProduct(ctx, parseID(args[0]), opts)
		if rep != nil {
			if syncJSONFlag {
				if jerr := printJSON(out, rep); jerr != nil {
					return jerr
				}
			} else {
				renderSyncReport(out, rep)
			}
		}
		if err != nil {
			return err
		}
		if rep.Failed > 0 {
			return &exitError{code: 1, msg: "sync finished with failures"}
		}
		return nil
	},
}

// oneIDOrAll accepts exactly one positional id, or none when all is set.
func oneIDOrAll(all *bool) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case *all && len(args) > 0:
			return errors.New("pass a product id or --all, not both")
		case !*all && len(args) != 1:
			return errors.New("pass exactly one product id, or --all")
		}
		return nil
	}
}

// parseID keeps numeric ids numeric so every driver binds them as integers.
func parseID(raw string) any {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func init() {
	syncCmd.Flags().BoolVar(&syncAllFlag, "all", false, "Sync every product")
	syncCmd.Flags().BoolVar(&syncOnlyDriftedFlag, "only-drifted", false, "Skip orders whose snapshot already matches")
	syncCmd.Flags().BoolVar(&syncJSONFlag, "json", false, "Print the report as JSON")
}
