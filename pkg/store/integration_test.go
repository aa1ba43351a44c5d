//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shashiranjanraj/ordersync/pkg/database"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

func setupPostgres(t *testing.T) *store.GormStore {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ordersync_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orderRow{}))
	require.NoError(t, db.Create(&[]orderRow{
		{ID: 1, OrderID: "JOB-1", ProductID: uintp(7), Specs: "old"},
		{ID: 2, OrderID: "JOB-2", ProductID: uintp(7), Specs: "old"},
	}).Error)
	return store.NewGorm(db)
}

func TestPostgres_UpdateAndFetch(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	n, err := s.Update(ctx, orders, store.Row{"specs": "A4 | UPS: 4", "ups": int64(4)}, store.Eq("product_id", 7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := s.Fetch(ctx, orders, store.Eq("product_id", 7))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A4 | UPS: 4", rows[0]["specs"])
	assert.Equal(t, int64(4), rows[0]["ups"])
}

func TestPostgres_SchemaErrors(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.Update(ctx, orders, store.Row{"plate_no": "P-1"}, store.Eq("id", 1))
	require.Error(t, err)
	assert.True(t, store.IsSchemaMismatch(err))

	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "42703", se.Code)
	assert.Equal(t, "plate_no", se.Column)

	_, err = s.Update(ctx, orders, store.Row{"ups": "abc"}, store.Eq("id", 1))
	require.Error(t, err)
	assert.True(t, store.IsSchemaMismatch(err), "invalid integer text is a type mismatch: %v", err)
}
