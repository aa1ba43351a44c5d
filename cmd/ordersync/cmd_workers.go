package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/internal/kernel"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/schedule"
)

var (
	queueWorkersFlag int
	syncDriftedFlag  bool
)

// ordersync queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued sync jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}

		printInfo(cmd.OutOrStdout(), "queue worker started (%d workers, %s driver); Ctrl+C to stop", workers, config.QueueDriver())
		k.Queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		printInfo(cmd.OutOrStdout(), "queue worker stopped")
		return nil
	},
}

// ordersync schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Audit every product on AUDIT_INTERVAL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		s := schedule.New()
		s.Every(k.Config.AuditEvery).Name("audit").WithoutOverlapping().Run(auditTask(k, syncDriftedFlag))

		out := cmd.OutOrStdout()
		for _, t := range s.List() {
			printInfo(out, "scheduled %s", t)
		}
		s.Start(ctx)

		<-ctx.Done()
		s.Wait()
		printInfo(out, "scheduler stopped")
		return nil
	},
}

// auditTask audits everything and, when resync is set, syncs the drifted
// orders it found.
func auditTask(k *kernel.Kernel, resync bool) schedule.Task {
	return func(ctx context.Context) {
		rep, err := k.Audit.AuditAll(ctx)
		if err != nil {
			logger.Error("schedule: audit failed", "error", err)
			return
		}
		logger.Info("schedule: audit done", "checked", rep.Checked, "drifted", rep.Drifted,
			"orphans", len(rep.Orphans), "product_errors", len(rep.ProductErrors))
		if !resync || rep.Drifted == 0 {
			return
		}

		run, err := k.Snapshot.SyncAll(ctx, services.SyncOptions{OnlyDrifted: true})
		if err != nil {
			logger.Error("schedule: resync failed", "error", err)
			return
		}
		logger.Info("schedule: resync done", "updated", run.Updated, "skipped", run.Skipped, "failed", run.Failed)
	}
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
	scheduleRunCmd.Flags().BoolVar(&syncDriftedFlag, "sync-drifted", false, "Sync drifted orders after each audit")
}
