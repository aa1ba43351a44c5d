package kernel_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ordersync/app/repositories"
	_ "github.com/shashiranjanraj/ordersync/database/migrations"
	"github.com/shashiranjanraj/ordersync/database/seeders"
	"github.com/shashiranjanraj/ordersync/internal/kernel"
	"github.com/shashiranjanraj/ordersync/pkg/database"
	"github.com/shashiranjanraj/ordersync/pkg/migration"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
}

func setup(t *testing.T) (*kernel.Kernel, *httptest.Server) {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	_, err = migration.New(db).Run()
	require.NoError(t, err)
	_, err = seeders.RunAll(db)
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	k := kernel.New(context.Background(), db, nil)
	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return k, srv
}

func do(t *testing.T, method, url, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func TestHealthz(t *testing.T) {
	_, srv := setup(t)
	status, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestShowProduct(t *testing.T) {
	_, srv := setup(t)

	status, env := do(t, http.MethodGet, srv.URL+"/api/products/1", "")
	require.Equal(t, http.StatusOK, status)
	var p struct {
		ProductName string `json:"product_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Mailer Box", p.ProductName)

	status, _ = do(t, http.MethodGet, srv.URL+"/api/products/999", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodGet, srv.URL+"/api/products/abc", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderReads(t *testing.T) {
	_, srv := setup(t)

	status, env := do(t, http.MethodGet, srv.URL+"/api/orders/3", "")
	require.Equal(t, http.StatusOK, status)
	var o struct {
		OrderID        string `json:"order_id"`
		SpecialEffects string `json:"special_effects"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, "JOB-1003", o.OrderID)
	assert.Equal(t, "Embossing", o.SpecialEffects)

	status, env = do(t, http.MethodGet, srv.URL+"/api/products/1/orders", "")
	require.Equal(t, http.StatusOK, status)
	var orders []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 3)
	assert.Equal(t, uint(1), orders[0].ID)

	status, _ = do(t, http.MethodGet, srv.URL+"/api/orders/999", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, http.MethodGet, srv.URL+"/api/products/999/orders", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIndexPaginates(t *testing.T) {
	_, srv := setup(t)

	status, env := do(t, http.MethodGet, srv.URL+"/api/products?limit=1", "")
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items      []map[string]any `json:"items"`
		Pagination struct {
			Total    int64 `json:"total"`
			LastPage int   `json:"last_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.LastPage)
}

func TestUpdateSyncsOrders(t *testing.T) {
	_, srv := setup(t)

	status, env := do(t, http.MethodPut, srv.URL+"/api/products/1", `{"ink":"Pantone 286","plate_no":"P-2"}`)
	require.Equal(t, http.StatusOK, status, env.Message)

	var res struct {
		Sync struct {
			Orders  int `json:"orders"`
			Updated int `json:"updated"`
		} `json:"sync"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 3, res.Sync.Orders)
	assert.Equal(t, 3, res.Sync.Updated)

	orders, err := repositories.NewOrderRepository().ByProduct(context.Background(), 1)
	require.NoError(t, err)
	for _, o := range orders {
		assert.Equal(t, "Pantone 286", o.Ink)
		assert.Equal(t, "P-2", o.PlateNo)
	}
}

func TestUpdateRejectsBadBodies(t *testing.T) {
	_, srv := setup(t)

	status, _ := do(t, http.MethodPut, srv.URL+"/api/products/1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, http.MethodPut, srv.URL+"/api/products/1", `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env := do(t, http.MethodPut, srv.URL+"/api/products/1", `{"special_effects":"Spot UV"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "special_effects")

	status, _ = do(t, http.MethodPut, srv.URL+"/api/products/999", `{"ink":"K"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAsyncUpdateIsQueued(t *testing.T) {
	k, srv := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	k.Queue.StartWorkers(ctx, 1)

	status, _ := do(t, http.MethodPut, srv.URL+"/api/products/1?async=1", `{"artwork_code":"AW-77"}`)
	require.Equal(t, http.StatusAccepted, status)

	repo := repositories.NewOrderRepository()
	assert.Eventually(t, func() bool {
		o, err := repo.FindByID(context.Background(), 1)
		return err == nil && o.ArtworkCode == "AW-77"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSyncThenAudit(t *testing.T) {
	_, srv := setup(t)

	status, env := do(t, http.MethodGet, srv.URL+"/api/audit", "")
	require.Equal(t, http.StatusOK, status)
	var before struct {
		Drifted int `json:"drifted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &before))
	assert.NotZero(t, before.Drifted)

	for _, id := range []string{"1", "2"} {
		status, _ = do(t, http.MethodPost, srv.URL+"/api/products/"+id+"/sync", "")
		require.Equal(t, http.StatusOK, status)
	}

	status, env = do(t, http.MethodGet, srv.URL+"/api/products/1/audit", "")
	require.Equal(t, http.StatusOK, status)
	var pa struct {
		Drifted    int  `json:"drifted"`
		SpecsStale bool `json:"specs_stale"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pa))
	assert.Zero(t, pa.Drifted)
	assert.False(t, pa.SpecsStale)
}

func TestMetricsAndRoutes(t *testing.T) {
	k, srv := setup(t)

	do(t, http.MethodGet, srv.URL+"/api/products/1", "")

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "ordersync_http_requests_total")

	names := map[string]bool{}
	for _, ri := range k.Router().Routes() {
		names[ri.Name] = true
	}
	for _, n := range []string{"products.index", "products.show", "products.update", "products.sync", "products.audit", "products.orders", "orders.show", "audit.all", "health"} {
		assert.True(t, names[n], n)
	}
}
