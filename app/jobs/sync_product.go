// Package jobs holds the background jobs dispatched through pkg/queue.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/queue"
)

// SyncProductName is the queue type name of SyncProductJob.
const SyncProductName = "sync_product"

// Requeue controls the follow-up a job schedules when some of its order
// writes failed. Max 0 disables follow-ups; the queue then retries the
// whole job.
type Requeue struct {
	Max   int
	Delay time.Duration
}

// SyncProductJob re-syncs the orders of one product after an edit.
type SyncProductJob struct {
	ProductID   uint `json:"product_id"`
	OnlyDrifted bool `json:"only_drifted"`
	Requeued    int  `json:"requeued,omitempty"`

	svc     *services.SnapshotService
	queue   *queue.Manager
	requeue Requeue
}

// NewSyncProductJob builds a job ready to dispatch.
func NewSyncProductJob(productID uint, onlyDrifted bool) *SyncProductJob {
	return &SyncProductJob{ProductID: productID, OnlyDrifted: onlyDrifted}
}

// Handle runs the sync. A missing product or a schema mismatch is not
// retried. When orders fail, a delayed follow-up re-syncs only the drifted
// ones, at most requeue.Max times.
func (j *SyncProductJob) Handle(ctx context.Context) error {
	if j.svc == nil {
		return queue.Permanent(errors.New("sync_product: job not bound to a snapshot service"))
	}
	rep, err := j.svc.SyncProduct(ctx, j.ProductID, services.SyncOptions{OnlyDrifted: j.OnlyDrifted})
	switch {
	case errors.Is(err, services.ErrProductNotFound) || services.IsFatal(err):
		return queue.Permanent(err)
	case err != nil:
		return err
	case rep.Failed == 0:
		return nil
	}

	failed := fmt.Errorf("sync_product: %d of %d orders failed for product %d", rep.Failed, rep.Orders, j.ProductID)
	if j.queue == nil || j.requeue.Max == 0 {
		return failed
	}
	if j.Requeued >= j.requeue.Max {
		return queue.Permanent(failed)
	}

	next := &SyncProductJob{ProductID: j.ProductID, OnlyDrifted: true, Requeued: j.Requeued + 1}
	if err := j.queue.DispatchAfter(ctx, SyncProductName, next, j.requeue.Delay); err != nil {
		return errors.Join(failed, err)
	}
	logger.WithCtx(ctx).Warn("sync_product: follow-up queued",
		"product_id", j.ProductID, "failed", rep.Failed, "requeued", next.Requeued, "delay", j.requeue.Delay)
	return nil
}

// Register binds the job type on m to svc. Follow-ups go back through m.
func Register(m *queue.Manager, svc *services.SnapshotService, rq Requeue) {
	m.Register(SyncProductName, func() queue.Job {
		return &SyncProductJob{svc: svc, queue: m, requeue: rq}
	})
}
