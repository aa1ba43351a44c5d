package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ordersync/internal/kernel"
)

var (
	auditAllFlag  bool
	auditJSONFlag bool
)

// ordersync audit <id> | --all
//
// Exit status is 2 when drift or orphans were found, so the command can
// gate a deploy or a cron alert.
var auditCmd = &cobra.Command{
	Use:   "audit [product-id]",
	Short: "Compare order snapshots with their products without writing",
	Args:  oneIDOrAll(&auditAllFlag),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		out := cmd.OutOrStdout()
		drift := &exitError{code: 2, msg: "audit found drift"}

		if auditAllFlag {
			rep, err := k.Audit.AuditAll(ctx)
			if err != nil {
				return err
			}
			if auditJSONFlag {
				if err := printJSON(out, rep); err != nil {
					return err
				}
			} else {
				renderAuditReport(out, rep)
			}
			if !rep.Clean() {
				return drift
			}
			return nil
		}

		pa, err := k.Audit.AuditProduct(ctx, parseID(args[0]))
		if err != nil {
			return err
		}
		if auditJSONFlag {
			if err := printJSON(out, pa); err != nil {
				return err
			}
		} else {
			renderProductAudit(out, pa)
		}
		if pa.Drifted > 0 || pa.SpecsStale {
			return drift
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditAllFlag, "all", false, "Audit every product and list orphan orders")
	auditCmd.Flags().BoolVar(&auditJSONFlag, "json", false, "Print the report as JSON")
}
