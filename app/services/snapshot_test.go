package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

func TestSyncProduct_WritesResolvedSnapshot(t *testing.T) {
	m := newFixture()

	rep, err := newSnapshot(m).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, "10", rep.ProductID)
	assert.Equal(t, expectedSpecs, rep.Specs)
	assert.True(t, rep.SpecsRewritten)
	assert.Equal(t, 2, rep.Orders)
	assert.Equal(t, 2, rep.Updated)
	assert.Zero(t, rep.Failed)
	assert.Empty(t, rep.Gaps)

	product := m.Rows(schema.Products.Name)[0]
	assert.Equal(t, expectedSpecs, product["specs"])

	for _, id := range []int64{100, 101} {
		o := orderByID(m, id)
		assert.Equal(t, "Mailer Box", o["product_name"])
		assert.Equal(t, expectedSpecs, o["specs"])
		assert.Equal(t, expectedSpecs, o["product_specs"])
		assert.Equal(t, "Spot UV | Gold Foil", o["special_effects"])
		assert.Equal(t, "10x20", o["dimension"])
		assert.Equal(t, "P-17", o["plate_no"])
		assert.Equal(t, "CMYK", o["ink"])
		assert.Equal(t, "AW-9", o["artwork_code"])
		assert.Equal(t, int64(4), o["ups"])
		assert.Equal(t, "Acme Foods", o["customer_name"])
		assert.Equal(t, "Art Card", o["paper_type_name"])
		assert.Equal(t, "300", o["gsm_value"])
	}

	// Orders of other products are untouched.
	assert.Equal(t, "Old Box", orderByID(m, 102)["product_name"])
	assert.Equal(t, "Old Box", orderByID(m, 103)["product_name"])
}

func TestSyncProduct_IsIdempotent(t *testing.T) {
	m := newFixture()
	svc := newSnapshot(m)

	_, err := svc.SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)
	before := m.Rows(schema.Orders.Name)

	rep, err := svc.SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)
	assert.False(t, rep.SpecsRewritten)
	assert.Equal(t, before, m.Rows(schema.Orders.Name))

	rep, err = svc.SyncProduct(context.Background(), int64(10), services.SyncOptions{OnlyDrifted: true})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Skipped)
	assert.Zero(t, rep.Updated)
}

func TestSyncProduct_UnknownEffectIsAGap(t *testing.T) {
	m := store.NewMemory()
	seed := newFixture()
	for _, name := range []string{
		schema.SpecialEffects.Name, schema.Sizes.Name, schema.Customers.Name,
		schema.PaperTypes.Name, schema.GSM.Name, schema.Orders.Name,
	} {
		m.Insert(name, seed.Rows(name)...)
	}
	p := productRow(10)
	p["special_effects"] = "1|4"
	m.Insert(schema.Products.Name, p)

	rep, err := newSnapshot(m).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, []services.ResolutionGap{{Table: "special_effects", ID: "4"}}, rep.Gaps)
	assert.Equal(t, 2, rep.Updated)
	assert.Equal(t, "Spot UV | 4", orderByID(m, 100)["special_effects"])
	assert.Equal(t, "A4 | UPS: 4 | 10x20 | Spot UV | 4", orderByID(m, 100)["specs"])
}

func TestSyncProduct_NonNumericUPSBecomesNull(t *testing.T) {
	m := newFixture()
	_, err := m.Update(context.Background(), store.Table{Name: schema.Products.Name},
		store.Row{"ups": "abc"}, store.Eq("id", int64(10)))
	require.NoError(t, err)
	_, err = m.Update(context.Background(), store.Table{Name: schema.Orders.Name},
		store.Row{"ups": int64(8)}, store.Eq("id", int64(100)))
	require.NoError(t, err)

	rep, err := newSnapshot(m).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A4 | 10x20 | Spot UV | Gold Foil", rep.Specs)
	o := orderByID(m, 100)
	assert.Contains(t, o, "ups")
	assert.Nil(t, o["ups"])
}

func TestSyncProduct_PartialFailure(t *testing.T) {
	st := &flakyStore{Store: newFixture(), updateErr: func(table, key string, _ int) error {
		if table == schema.Orders.Name && key == "101" {
			return permanent(table)
		}
		return nil
	}}

	rep, err := newSnapshot(st).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "101", rep.Failures[0].ID)
	assert.Contains(t, rep.Failures[0].Reason, "value too long")
	assert.Equal(t, 1, st.attempts(schema.Orders.Name, "101"), "permanent errors are not retried")
}

func TestSyncProduct_RetriesTransientErrors(t *testing.T) {
	st := &flakyStore{Store: newFixture(), updateErr: func(table, key string, n int) error {
		if table == schema.Orders.Name && key == "100" && n == 1 {
			return transient(table)
		}
		return nil
	}}

	rep, err := newSnapshot(st).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Updated)
	assert.Equal(t, 2, st.attempts(schema.Orders.Name, "100"))
}

func TestSyncProduct_RetryIsBounded(t *testing.T) {
	st := &flakyStore{Store: newFixture(), updateErr: func(table, key string, _ int) error {
		if table == schema.Orders.Name && key == "100" {
			return transient(table)
		}
		return nil
	}}

	rep, err := newSnapshot(st).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, st.attempts(schema.Orders.Name, "100"))
}

func TestSyncProduct_ProductSpecsWrittenBeforeOrders(t *testing.T) {
	st := &flakyStore{Store: newFixture()}

	_, err := newSnapshot(st).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.NoError(t, err)

	calls := st.callLog()
	require.NotEmpty(t, calls)
	assert.Equal(t, schema.Products.Name+"#10", calls[0])
	assert.Len(t, calls, 3)
}

func TestSyncProduct_SchemaMismatchAborts(t *testing.T) {
	m := newFixture()
	cols := columns(schema.Orders)
	var kept []string
	for _, c := range cols {
		if c != "plate_no" {
			kept = append(kept, c)
		}
	}
	m.Define(schema.Orders.Name, kept...)

	rep, err := newSnapshot(m).SyncProduct(context.Background(), int64(10), services.SyncOptions{})
	require.Error(t, err)

	var sm *services.SchemaMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, "plate_no", sm.Column)
	assert.True(t, services.IsFatal(err))
	require.NotNil(t, rep)
	assert.Zero(t, rep.Updated)
}

func TestSyncProduct_NotFound(t *testing.T) {
	_, err := newSnapshot(newFixture()).SyncProduct(context.Background(), int64(404), services.SyncOptions{})
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.False(t, services.IsFatal(err))
}

func TestSyncProduct_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSnapshot(newFixture()).SyncProduct(ctx, int64(10), services.SyncOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncProduct_CancelMidRunIsPartial(t *testing.T) {
	m := newFixture()
	for id := int64(104); id <= 107; id++ {
		m.Insert(schema.Orders.Name, orderRow(id, int64(10)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := &flakyStore{Store: m, updateErr: func(table, key string, _ int) error {
		if table == schema.Orders.Name && key == "101" {
			cancel()
		}
		return nil
	}}

	cfg := syncConfig()
	cfg.Concurrency = 1
	svc := services.NewSnapshotService(st, services.NewLookupService(st, nil, 0), schema, cfg)

	rep, err := svc.SyncProduct(ctx, int64(10), services.SyncOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)

	assert.Equal(t, 6, rep.Orders)
	assert.Equal(t, 1, rep.Updated)
	assert.Zero(t, rep.Failed)
	assert.Empty(t, rep.Failures)

	assert.Equal(t, "Mailer Box", orderByID(m, 100)["product_name"])
	for _, id := range []int64{101, 104, 105, 106, 107} {
		assert.Equal(t, "Old Box", orderByID(m, id)["product_name"], "order %d", id)
	}
	assert.Zero(t, st.attempts(schema.Orders.Name, "104"))
}

func TestSyncAll(t *testing.T) {
	m := newFixture()
	p := productRow(11)
	p["product_name"] = "Sleeve"
	p["special_effects"] = ""
	m.Insert(schema.Products.Name, p)
	m.Insert(schema.Orders.Name, orderRow(110, int64(11)))

	run, err := newSnapshot(m).SyncAll(context.Background(), services.SyncOptions{})
	require.NoError(t, err)

	assert.True(t, run.OK())
	require.Len(t, run.Products, 2)
	assert.Equal(t, 3, run.Updated)
	assert.Equal(t, "Sleeve", orderByID(m, 110)["product_name"])
	assert.Equal(t, "A4 | UPS: 4 | 10x20", orderByID(m, 110)["specs"])
}

func TestSyncAll_ContinuesPastProductFailure(t *testing.T) {
	m := newFixture()
	m.Insert(schema.Products.Name, productRow(11))
	m.Insert(schema.Orders.Name, orderRow(110, int64(11)))

	st := &flakyStore{Store: m, updateErr: func(table, key string, _ int) error {
		if table == schema.Products.Name && key == "10" {
			return permanent(table)
		}
		return nil
	}}

	run, err := newSnapshot(st).SyncAll(context.Background(), services.SyncOptions{})
	require.NoError(t, err)

	assert.False(t, run.OK())
	require.Len(t, run.ProductErrors, 1)
	assert.Equal(t, "10", run.ProductErrors[0].ID)
	require.Len(t, run.Products, 1)
	assert.Equal(t, "11", run.Products[0].ProductID)
	assert.Equal(t, 1, run.Updated)
}
