package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

const expectedSpecs = "A4 | UPS: 4 | 10x20 | Spot UV | Gold Foil"

var schema = config.Schema()

func columns(ts config.TableSchema) []string {
	cols := []string{ts.Key}
	for _, c := range ts.Columns {
		cols = append(cols, c)
	}
	return cols
}

func lookupRow(id int64, name string) store.Row { return store.Row{"id": id, "name": name} }

func productRow(id int64) store.Row {
	return store.Row{
		"id":              id,
		"product_name":    "Mailer Box",
		"specs":           "",
		"special_effects": "1|147",
		"dimension":       "10x20",
		"plate_no":        "P-17",
		"ink":             "CMYK",
		"artwork_code":    "AW-9",
		"ups":             "4",
		"size_id":         int64(3),
		"customer_id":     int64(5),
		"paper_type_id":   int64(2),
		"gsm_id":          int64(9),
	}
}

func orderRow(id int64, productID any) store.Row {
	return store.Row{
		"id":              id,
		"order_id":        "JOB-" + store.Text(id),
		"product_id":      productID,
		"product_name":    "Old Box",
		"specs":           "stale",
		"product_specs":   "stale",
		"special_effects": "1|147",
		"dimension":       "",
		"plate_no":        nil,
		"ink":             nil,
		"artwork_code":    nil,
		"ups":             nil,
		"customer_name":   nil,
		"paper_type_name": nil,
		"gsm_value":       nil,
	}
}

// newFixture returns a memory store holding one product (10) with two
// orders (100, 101), an unlinked order (102) and an order pointing at a
// deleted product (103).
func newFixture() *store.MemoryStore {
	m := store.NewMemory()
	for _, ts := range []config.TableSchema{
		schema.Products, schema.Orders, schema.SpecialEffects,
		schema.Sizes, schema.Customers, schema.PaperTypes, schema.GSM,
	} {
		m.Define(ts.Name, columns(ts)...)
	}

	m.Insert(schema.SpecialEffects.Name, lookupRow(1, "Spot UV"), lookupRow(147, "Gold Foil"))
	m.Insert(schema.Sizes.Name, lookupRow(3, "A4"))
	m.Insert(schema.Customers.Name, lookupRow(5, "Acme Foods"))
	m.Insert(schema.PaperTypes.Name, lookupRow(2, "Art Card"))
	m.Insert(schema.GSM.Name, lookupRow(9, "300"))

	m.Insert(schema.Products.Name, productRow(10))
	m.Insert(schema.Orders.Name,
		orderRow(100, int64(10)),
		orderRow(101, int64(10)),
		orderRow(102, nil),
		orderRow(103, int64(99)),
	)
	return m
}

func syncConfig() config.SyncConfig {
	return config.SyncConfig{
		Concurrency:  4,
		BatchSize:    2,
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
	}
}

func newSnapshot(st store.Store) *services.SnapshotService {
	return services.NewSnapshotService(st, services.NewLookupService(st, nil, 0), schema, syncConfig())
}

func newAudit(st store.Store) *services.AuditService {
	return services.NewAuditService(st, services.NewLookupService(st, nil, 0), schema)
}

func orderByID(m *store.MemoryStore, id int64) store.Row {
	for _, r := range m.Rows(schema.Orders.Name) {
		if r["id"] == id {
			return r
		}
	}
	return nil
}

// flakyStore wraps a Store and fails chosen operations.
type flakyStore struct {
	store.Store

	mu sync.Mutex
	// updateErr returns the error for the nth update of a row key, or nil.
	updateErr func(table string, key string, n int) error
	fetchErr  func(table string) error
	updates   map[string]int
	calls     []string
}

func (f *flakyStore) Fetch(ctx context.Context, t store.Table, filters ...store.Filter) ([]store.Row, error) {
	if f.fetchErr != nil {
		if err := f.fetchErr(t.Name); err != nil {
			return nil, err
		}
	}
	return f.Store.Fetch(ctx, t, filters...)
}

func (f *flakyStore) Update(ctx context.Context, t store.Table, values store.Row, filters ...store.Filter) (int64, error) {
	key := ""
	if len(filters) > 0 {
		key = store.Text(filters[0].Value)
	}

	f.mu.Lock()
	if f.updates == nil {
		f.updates = map[string]int{}
	}
	f.updates[t.Name+"#"+key]++
	n := f.updates[t.Name+"#"+key]
	f.calls = append(f.calls, t.Name+"#"+key)
	f.mu.Unlock()

	if f.updateErr != nil {
		if err := f.updateErr(t.Name, key, n); err != nil {
			return 0, err
		}
	}
	return f.Store.Update(ctx, t, values, filters...)
}

func (f *flakyStore) attempts(table, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[table+"#"+key]
}

func (f *flakyStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func transient(table string) error {
	return &store.Error{Op: "update", Table: table, Kind: store.KindTransient, Message: "could not query the database for the schema cache"}
}

func permanent(table string) error {
	return &store.Error{Op: "update", Table: table, Kind: store.KindOther, Message: "value too long"}
}
