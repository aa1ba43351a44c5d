package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"github.com/shashiranjanraj/ordersync/pkg/store"
	"github.com/shashiranjanraj/ordersync/pkg/workerpool"
)

// SyncOptions tunes one sync run.
type SyncOptions struct {
	// OnlyDrifted skips orders whose snapshot already matches.
	OnlyDrifted bool
}

// Failure is one order (or product, in a RunReport) that could not be synced.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// SyncReport summarises the sync of one product.
type SyncReport struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Specs          string          `json:"specs"`
	SpecsRewritten bool            `json:"specs_rewritten"`
	Orders         int             `json:"orders"`
	Updated        int             `json:"updated"`
	Skipped        int             `json:"skipped"`
	Failed         int             `json:"failed"`
	Failures       []Failure       `json:"failures,omitempty"`
	Gaps           []ResolutionGap `json:"gaps,omitempty"`
}

// RunReport aggregates a SyncAll run.
type RunReport struct {
	Products      []*SyncReport `json:"products"`
	ProductErrors []Failure     `json:"product_errors,omitempty"`
	Updated       int           `json:"updated"`
	Skipped       int           `json:"skipped"`
	Failed        int           `json:"failed"`
}

func (r *RunReport) add(rep *SyncReport) {
	r.Products = append(r.Products, rep)
	r.Updated += rep.Updated
	r.Skipped += rep.Skipped
	r.Failed += rep.Failed
}

// OK reports whether every product and order synced.
func (r *RunReport) OK() bool { return r.Failed == 0 && len(r.ProductErrors) == 0 }

// SnapshotService copies resolved product attributes onto every order that
// references the product.
type SnapshotService struct {
	store   store.Store
	lookups *LookupService
	schema  config.SchemaConfig
	cfg     config.SyncConfig
}

func NewSnapshotService(st store.Store, lookups *LookupService, schema config.SchemaConfig, cfg config.SyncConfig) *SnapshotService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &SnapshotService{store: st, lookups: lookups, schema: schema, cfg: cfg}
}

// SyncProduct refreshes every order of one product. Per-order failures are
// listed in the report; the error is non-nil only when the product itself
// could not be processed or the run was aborted. A cancelled run returns
// the partial report together with the context error.
func (s *SnapshotService) SyncProduct(ctx context.Context, productID any, opts SyncOptions) (*SyncReport, error) {
	defer metrics.ObserveSync("product", time.Now())

	log := logger.WithRun(ctx, "sync").With("product_id", store.Text(productID))
	ctx = logger.InjectLogger(ctx, log)

	lookups, err := s.lookups.LoadAll(ctx, s.schema)
	if err != nil {
		log.Error("sync: lookups unavailable", "error", err)
		return nil, err
	}

	rep, err := s.syncProduct(ctx, lookups, productID, opts)
	if rep != nil {
		log.Info("sync: product done",
			"orders", rep.Orders, "updated", rep.Updated,
			"skipped", rep.Skipped, "failed", rep.Failed, "gaps", len(rep.Gaps))
	}
	if err != nil {
		log.Error("sync: product failed", "error", err)
	}
	return rep, err
}

// SyncAll syncs every product. Lookups are read once. A failure on one
// product is recorded and the run moves on; a schema mismatch or
// cancellation stops it and returns what was done so far.
func (s *SnapshotService) SyncAll(ctx context.Context, opts SyncOptions) (*RunReport, error) {
	defer metrics.ObserveSync("all", time.Now())

	log := logger.WithRun(ctx, "sync_all")
	ctx = logger.InjectLogger(ctx, log)

	run := &RunReport{}
	lookups, err := s.lookups.LoadAll(ctx, s.schema)
	if err != nil {
		return run, err
	}

	products := s.schema.Products
	rows, err := s.store.Fetch(ctx, tableOf(products))
	if err != nil {
		return run, schemaErr(products.Name, fmt.Errorf("sync: list products: %w", err))
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		id := row[products.Key]
		rep, err := s.syncProduct(ctx, lookups, id, opts)
		if rep != nil {
			run.add(rep)
		}
		if err == nil {
			continue
		}
		if IsFatal(err) || ctx.Err() != nil {
			log.Error("sync: run aborted", "product_id", store.Text(id), "error", err)
			return run, err
		}
		log.Warn("sync: product skipped", "product_id", store.Text(id), "error", err)
		run.ProductErrors = append(run.ProductErrors, Failure{ID: store.Text(id), Reason: err.Error()})
	}

	log.Info("sync: run done", "products", len(run.Products),
		"updated", run.Updated, "skipped", run.Skipped, "failed", run.Failed,
		"product_errors", len(run.ProductErrors))
	return run, nil
}

func (s *SnapshotService) syncProduct(ctx context.Context, lookups *Lookups, id any, opts SyncOptions) (*SyncReport, error) {
	products, orders := s.schema.Products, s.schema.Orders

	p, err := s.fetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	r := lookups.ResolveProduct(p)

	// The product's own specs are committed and read back before any order
	// is touched.
	rewritten := false
	if p.Specs != r.Specs {
		_, err := s.store.Update(ctx, tableOf(products),
			store.Row{products.Col("specs"): r.Specs}, store.Eq(products.Key, p.ID))
		if err != nil {
			return nil, schemaErr(products.Name, fmt.Errorf("sync: write product specs: %w", err))
		}
		if p, err = s.fetchProduct(ctx, id); err != nil {
			return nil, err
		}
		if p.Specs != r.Specs {
			return nil, fmt.Errorf("%w: product %v", ErrStaleProduct, id)
		}
		r = lookups.ResolveProduct(p)
		rewritten = true
	}

	rep := &SyncReport{
		ProductID:      store.Text(p.ID),
		ProductName:    p.Name,
		Specs:          r.Specs,
		SpecsRewritten: rewritten,
		Gaps:           r.Gaps,
	}

	rows, err := s.store.Fetch(ctx, tableOf(orders), store.Eq(orders.Col("product_id"), p.ID))
	if err != nil {
		return rep, schemaErr(orders.Name, fmt.Errorf("sync: list orders: %w", err))
	}
	rep.Orders = len(rows)

	return rep, s.writeOrders(ctx, rows, snapshotRow(&r, orders), opts, rep)
}

func (s *SnapshotService) fetchProduct(ctx context.Context, id any) (Product, error) {
	products := s.schema.Products
	row, err := s.store.FetchByID(ctx, tableOf(products), id)
	if store.IsNotFound(err) {
		return Product{}, fmt.Errorf("%w: %v", ErrProductNotFound, id)
	}
	if err != nil {
		return Product{}, schemaErr(products.Name, fmt.Errorf("sync: fetch product %v: %w", id, err))
	}
	return decodeProduct(row, products)
}

// writeOrders writes values onto every order in batches, at most
// cfg.Concurrency writes in flight. A schema mismatch cancels the remaining
// writes.
func (s *SnapshotService) writeOrders(ctx context.Context, rows []store.Row, values store.Row, opts SyncOptions, rep *SyncReport) error {
	if len(rows) == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	pool := workerpool.New(s.cfg.Concurrency)
	defer pool.Shutdown()
	pool.OnPanic = func(r any) {
		cancel(fmt.Errorf("sync: order write panicked: %v", r))
	}

	var mu sync.Mutex
	log := logger.WithCtx(ctx)
	key := s.schema.Orders.Key

	for start := 0; start < len(rows); start += s.cfg.BatchSize {
		if runCtx.Err() != nil {
			break
		}
		end := min(start+s.cfg.BatchSize, len(rows))

		for _, row := range rows[start:end] {
			if opts.OnlyDrifted && inSync(row, values) {
				mu.Lock()
				rep.Skipped++
				mu.Unlock()
				metrics.SyncOrders.WithLabelValues("skipped").Inc()
				continue
			}

			orderID := row[key]
			err := pool.Go(runCtx, func(ctx context.Context) {
				err := s.writeOrder(ctx, orderID, values)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					rep.Updated++
					metrics.SyncOrders.WithLabelValues("updated").Inc()
					return
				}
				if aborted(ctx, err) {
					// The run stopped; the order is left for the next sync.
					log.Debug("sync: order write aborted", "order", store.Text(orderID), "error", err)
					return
				}
				rep.Failed++
				rep.Failures = append(rep.Failures, Failure{ID: store.Text(orderID), Reason: err.Error()})
				metrics.SyncOrders.WithLabelValues("failed").Inc()
				log.Warn("sync: order write failed", "order", store.Text(orderID), "error", err)
				if store.IsSchemaMismatch(err) {
					cancel(schemaErr(s.schema.Orders.Name, err))
				}
			})
			if err != nil {
				break
			}
		}
		pool.Drain()
	}

	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return ctx.Err()
}

// aborted reports whether err comes from the run being cancelled rather than
// from the backend.
func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// writeOrder updates one order, retrying transient failures with
// exponential backoff.
func (s *SnapshotService) writeOrder(ctx context.Context, orderID any, values store.Row) error {
	orders := s.schema.Orders
	attempt := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryBackoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)

	return backoff.RetryNotify(func() error {
		attempt++
		_, err := s.store.Update(ctx, tableOf(orders), values, store.Eq(orders.Key, orderID))
		if err != nil && !store.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		metrics.SyncOrders.WithLabelValues("retried").Inc()
		logger.WithCtx(ctx).Debug("sync: retrying order write",
			slog.String("order", store.Text(orderID)),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	})
}
