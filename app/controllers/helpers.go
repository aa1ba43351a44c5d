package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/response"
)

// productID reads the {id} route parameter.
func productID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func flag(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// fail maps engine errors onto HTTP statuses.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var sm *services.SchemaMismatchError
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, services.ErrLookupUnavailable):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &sm):
		logger.WithCtx(r.Context()).Error("schema mismatch", "table", sm.Table, "column", sm.Column, "error", err)
		response.Error(w, http.StatusInternalServerError, sm.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
