// Package server runs the HTTP API until the process is signalled.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/internal/kernel"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Start boots the kernel and serves until SIGINT or SIGTERM. In-process
// queue workers run alongside so ?async=1 edits are synced even without a
// separate queue:work process.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	k, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	return Run(ctx, k, ":"+config.AppPort(), config.QueueWorkers())
}

// Run serves k on addr until ctx is done, then drains in-flight requests.
func Run(ctx context.Context, k *kernel.Kernel, addr string, workers int) error {
	if workers > 0 {
		k.Queue.StartWorkers(ctx, workers)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv(), "queue_workers", workers)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
