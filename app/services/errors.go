package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/ordersync/pkg/store"
)

var (
	// ErrProductNotFound is returned when the product to sync or audit does
	// not exist. It is never retried.
	ErrProductNotFound = errors.New("product not found")

	// ErrLookupUnavailable means a lookup table could not be read, so no
	// identifier can be resolved for this run.
	ErrLookupUnavailable = errors.New("lookup table unavailable")

	// ErrStaleProduct means the product's rewritten specs were not visible
	// on read-back, so syncing orders would propagate stale values.
	ErrStaleProduct = errors.New("product change not visible after write")
)

// SchemaMismatchError reports a column that is missing or has an
// incompatible type. It aborts the whole run.
type SchemaMismatchError struct {
	Table  string
	Column string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	col := e.Column
	if col == "" {
		col = "?"
	}
	if e.Err == nil {
		return fmt.Sprintf("schema mismatch on %s.%s", e.Table, col)
	}
	return fmt.Sprintf("schema mismatch on %s.%s: %v", e.Table, col, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort a whole run rather than a single
// product or order.
func IsFatal(err error) bool {
	var sm *SchemaMismatchError
	return errors.As(err, &sm) || errors.Is(err, ErrLookupUnavailable)
}

// schemaErr converts a store schema error into a *SchemaMismatchError and
// passes every other error through unchanged.
func schemaErr(table string, err error) error {
	var se *store.Error
	if errors.As(err, &se) && se.Kind == store.KindSchema {
		return &SchemaMismatchError{Table: table, Column: se.Column, Err: err}
	}
	return err
}
