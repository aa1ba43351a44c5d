package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

// rawIDsRe matches a value that is nothing but delimited numeric ids, i.e.
// a special-effects column that was copied without resolution.
var rawIDsRe = regexp.MustCompile(`^\s*\d+(\s*[|/,]\s*\d+)*\s*$`)

// Mismatch is one snapshot field that differs from the product.
type Mismatch struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// OrderAudit is the comparison of one order against its product.
type OrderAudit struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	Matches        []string   `json:"matches"`
	Mismatches     []Mismatch `json:"mismatches,omitempty"`
	RawIdentifiers bool       `json:"raw_identifiers"`
}

// Drifted reports whether the order needs a sync. RawIdentifiers alone is a
// warning: an unresolved product id is copied verbatim by a sync, so the
// order can match its product and still hold ids.
func (o OrderAudit) Drifted() bool { return len(o.Mismatches) > 0 }

// ProductAudit is the audit of one product and its orders.
type ProductAudit struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ExpectedSpecs string          `json:"expected_specs"`
	SpecsStale    bool            `json:"specs_stale"`
	Orders        []OrderAudit    `json:"orders"`
	Drifted       int             `json:"drifted"`
	RawIDs        int             `json:"raw_identifiers"`
	Gaps          []ResolutionGap `json:"gaps,omitempty"`
}

// Orphan is an order with no product or a dangling product reference.
type Orphan struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id,omitempty"`
	Reason    string `json:"reason"`
}

// AuditReport aggregates AuditAll.
type AuditReport struct {
	Products      []*ProductAudit `json:"products"`
	Orphans       []Orphan        `json:"orphans,omitempty"`
	ProductErrors []Failure       `json:"product_errors,omitempty"`
	Checked       int             `json:"checked"`
	Drifted       int             `json:"drifted"`
}

// Clean reports whether nothing needs attention.
func (r *AuditReport) Clean() bool {
	return r.Drifted == 0 && len(r.Orphans) == 0 && len(r.ProductErrors) == 0
}

// AuditService compares order snapshots with their products. It never writes.
type AuditService struct {
	store   store.Store
	lookups *LookupService
	schema  config.SchemaConfig
}

func NewAuditService(st store.Store, lookups *LookupService, schema config.SchemaConfig) *AuditService {
	return &AuditService{store: st, lookups: lookups, schema: schema}
}

// AuditProduct audits the orders of one product.
func (s *AuditService) AuditProduct(ctx context.Context, productID any) (*ProductAudit, error) {
	log := logger.WithRun(ctx, "audit").With("product_id", store.Text(productID))
	ctx = logger.InjectLogger(ctx, log)

	lookups, err := s.lookups.LoadAll(ctx, s.schema)
	if err != nil {
		return nil, err
	}

	products := s.schema.Products
	row, err := s.store.FetchByID(ctx, tableOf(products), productID)
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, schemaErr(products.Name, fmt.Errorf("audit: fetch product: %w", err))
	}

	pa, err := s.auditRow(ctx, lookups, row)
	if err == nil {
		log.Info("audit: product done", "orders", len(pa.Orders), "drifted", pa.Drifted)
	}
	return pa, err
}

// AuditAll audits every product and lists orphan orders.
func (s *AuditService) AuditAll(ctx context.Context) (*AuditReport, error) {
	log := logger.WithRun(ctx, "audit_all")
	ctx = logger.InjectLogger(ctx, log)

	rep := &AuditReport{}
	lookups, err := s.lookups.LoadAll(ctx, s.schema)
	if err != nil {
		return rep, err
	}

	products, orders := s.schema.Products, s.schema.Orders
	rows, err := s.store.Fetch(ctx, tableOf(products))
	if err != nil {
		return rep, schemaErr(products.Name, fmt.Errorf("audit: list products: %w", err))
	}

	known := make(map[string]bool, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		id := store.Text(row[products.Key])
		known[id] = true

		pa, err := s.auditRow(ctx, lookups, row)
		if err != nil {
			if IsFatal(err) || ctx.Err() != nil {
				return rep, err
			}
			rep.ProductErrors = append(rep.ProductErrors, Failure{ID: id, Reason: err.Error()})
			continue
		}
		rep.Products = append(rep.Products, pa)
		rep.Checked += len(pa.Orders)
		rep.Drifted += pa.Drifted
	}

	productCol := orders.Col("product_id")
	unlinked, err := s.store.Fetch(ctx, tableOf(orders), store.IsNull(productCol))
	if err != nil {
		return rep, schemaErr(orders.Name, fmt.Errorf("audit: list unlinked orders: %w", err))
	}
	for _, o := range unlinked {
		rep.Orphans = append(rep.Orphans, s.orphan(o, "no product"))
	}

	linked, err := s.store.Fetch(ctx, tableOf(orders), store.NotNull(productCol))
	if err != nil {
		return rep, schemaErr(orders.Name, fmt.Errorf("audit: list linked orders: %w", err))
	}
	for _, o := range linked {
		if !known[store.Text(o[productCol])] {
			rep.Orphans = append(rep.Orphans, s.orphan(o, "product does not exist"))
		}
	}

	log.Info("audit: run done", "products", len(rep.Products), "checked", rep.Checked,
		"drifted", rep.Drifted, "orphans", len(rep.Orphans))
	return rep, nil
}

func (s *AuditService) auditRow(ctx context.Context, lookups *Lookups, row store.Row) (*ProductAudit, error) {
	products, orders := s.schema.Products, s.schema.Orders

	p, err := decodeProduct(row, products)
	if err != nil {
		return nil, err
	}
	r := lookups.ResolveProduct(p)

	pa := &ProductAudit{
		ProductID:     store.Text(p.ID),
		ProductName:   p.Name,
		ExpectedSpecs: r.Specs,
		SpecsStale:    p.Specs != r.Specs,
		Gaps:          r.Gaps,
	}

	rows, err := s.store.Fetch(ctx, tableOf(orders), store.Eq(orders.Col("product_id"), p.ID))
	if err != nil {
		return nil, schemaErr(orders.Name, fmt.Errorf("audit: list orders: %w", err))
	}

	for _, o := range rows {
		oa, err := s.compare(o, &r)
		if err != nil {
			return nil, err
		}
		if oa.Drifted() {
			pa.Drifted++
		}
		if oa.RawIdentifiers {
			pa.RawIDs++
		}
		pa.Orders = append(pa.Orders, oa)
	}
	return pa, nil
}

func (s *AuditService) compare(o store.Row, r *ResolvedProduct) (OrderAudit, error) {
	orders := s.schema.Orders
	oa := OrderAudit{
		ID:      store.Text(o[orders.Key]),
		OrderID: store.Text(o[orders.Col("order_id")]),
	}

	for _, f := range SnapshotFields {
		col := orders.Col(f.Name)
		actual, ok := o[col]
		if !ok {
			return oa, &SchemaMismatchError{Table: orders.Name, Column: col}
		}
		want := f.Value(r)
		if sameValue(want, actual) {
			oa.Matches = append(oa.Matches, f.Name)
			continue
		}
		oa.Mismatches = append(oa.Mismatches, Mismatch{
			Field:    f.Name,
			Column:   col,
			Expected: store.Text(want),
			Actual:   store.Text(actual),
		})
		metrics.AuditDrift.WithLabelValues(f.Name).Inc()
	}

	effects := store.Text(o[orders.Col("special_effects")])
	oa.RawIdentifiers = rawIDsRe.MatchString(effects)
	return oa, nil
}

func (s *AuditService) orphan(o store.Row, reason string) Orphan {
	orders := s.schema.Orders
	return Orphan{
		ID:        store.Text(o[orders.Key]),
		OrderID:   store.Text(o[orders.Col("order_id")]),
		ProductID: store.Text(o[orders.Col("product_id")]),
		Reason:    reason,
	}
}
