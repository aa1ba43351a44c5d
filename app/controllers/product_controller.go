package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/ordersync/app/jobs"
	"github.com/shashiranjanraj/ordersync/app/models"
	"github.com/shashiranjanraj/ordersync/app/repositories"
	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/bind"
	"github.com/shashiranjanraj/ordersync/pkg/queue"
	"github.com/shashiranjanraj/ordersync/pkg/response"
)

type ProductController struct {
	products *services.ProductService
	repo     *repositories.ProductRepository
	sync     *services.SnapshotService
	audit    *services.AuditService
	queue    *queue.Manager
}

func NewProductController(
	products *services.ProductService,
	repo *repositories.ProductRepository,
	sync *services.SnapshotService,
	audit *services.AuditService,
	q *queue.Manager,
) *ProductController {
	return &ProductController{products: products, repo: repo, sync: sync, audit: audit, queue: q}
}

type updateResult struct {
	Product *models.Product      `json:"product"`
	Sync    *services.SyncReport `json:"sync,omitempty"`
}

// Index lists products, 20 per page by default.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, pagination, err := c.repo.All(r.Context(), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, products, pagination)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}
	p, err := c.products.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p)
}

// Update edits a product and syncs its orders. With ?async=1 the sync is
// queued and the response is 202.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	var in services.ProductInput
	errs, err := bind.JSON(w, r, &in)
	if err != nil {
		response.ValidationError(w, map[string]string{"body": err.Error()})
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if in.Empty() {
		response.ValidationError(w, map[string]string{"body": "no fields to update"})
		return
	}
	opts := services.SyncOptions{OnlyDrifted: flag(r, "only_drifted")}

	if flag(r, "async") {
		p, err := c.products.Update(r.Context(), id, in)
		if err != nil {
			fail(w, r, err)
			return
		}
		if err := c.queue.Dispatch(r.Context(), jobs.SyncProductName, jobs.NewSyncProductJob(p.ID, opts.OnlyDrifted)); err != nil {
			fail(w, r, err)
			return
		}
		response.Accepted(w, "sync queued", updateResult{Product: p})
		return
	}

	p, rep, err := c.products.UpdateAndSync(r.Context(), id, in, opts)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeSync(w, updateResult{Product: p, Sync: rep}, rep)
}

// Sync re-syncs the orders of one product without editing it.
func (c *ProductController) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}
	rep, err := c.sync.SyncProduct(r.Context(), id, services.SyncOptions{OnlyDrifted: flag(r, "only_drifted")})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeSync(w, rep, rep)
}

// Audit reports drift for one product. It never writes.
func (c *ProductController) Audit(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}
	pa, err := c.audit.AuditProduct(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, pa)
}

// writeSync answers 200, or 207 when some orders failed.
func writeSync(w http.ResponseWriter, data interface{}, rep *services.SyncReport) {
	if rep != nil && rep.Failed > 0 {
		response.WithStatus(w, http.StatusMultiStatus,
			strconv.Itoa(rep.Failed)+" of "+strconv.Itoa(rep.Orders)+" orders failed to sync", data)
		return
	}
	response.Success(w, data)
}
