package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ordersync/pkg/router"
)

func TestGroupRoutesAndNames(t *testing.T) {
	r := router.New()
	var pattern string
	api := r.Group("/api")
	api.Put("/products/{id}", "products.update", func(w http.ResponseWriter, req *http.Request) {
		pattern = router.Pattern(req)
		w.WriteHeader(http.StatusNoContent)
	})
	api.Get("/audit", "audit.all", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/products/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/api/products/{id}", pattern)

	url, err := r.URL("products.update", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/7", url)

	_, err = r.URL("products.update", nil)
	assert.Error(t, err)

	assert.Equal(t, []router.RouteInfo{
		{Name: "audit.all", Method: http.MethodGet, Path: "/api/audit"},
		{Name: "products.update", Method: http.MethodPut, Path: "/api/products/{id}"},
	}, r.Routes())
}

func TestGroupMiddlewareOrder(t *testing.T) {
	r := router.New()
	var order []string
	mw := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	g := r.Group("/v1", mw("group"))
	g.Get("/x", "", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }, mw("route"))

	r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/x", nil))
	assert.Equal(t, []string{"group", "route", "handler"}, order)
	assert.Empty(t, r.Routes(), "unnamed routes are not listed")
}
