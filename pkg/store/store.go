// Package store is the data-store contract the sync engine runs against:
// fetch-by-id, fetch-by-filter and bulk update-by-filter over loosely typed
// rows, each returning a result or a structured *Error.
//
// Two implementations ship with the package:
//
//	s := store.NewGorm(database.DB) // any gorm dialector (postgres, sqlite, …)
//	s := store.NewMemory()          // in-process tables for development and tests
package store

import (
	"context"
	"fmt"
)

// Row is one database row keyed by physical column name.
type Row map[string]any

// Table identifies a table and its primary-key column.
type Table struct {
	Name string
	Key  string
}

func (t Table) key() string {
	if t.Key == "" {
		return "id"
	}
	return t.Key
}

// Op is a filter operator.
type Op int

const (
	OpEq Op = iota
	OpIsNull
	OpNotNull
	OpLike
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpIsNull:
		return "IS NULL"
	case OpNotNull:
		return "IS NOT NULL"
	case OpLike:
		return "LIKE"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Filter is a single column predicate. Multiple filters are ANDed.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func (f Filter) String() string {
	switch f.Op {
	case OpIsNull, OpNotNull:
		return f.Column + " " + f.Op.String()
	default:
		return fmt.Sprintf("%s %s %v", f.Column, f.Op, f.Value)
	}
}

func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }
func IsNull(column string) Filter        { return Filter{Column: column, Op: OpIsNull} }
func NotNull(column string) Filter       { return Filter{Column: column, Op: OpNotNull} }

// Like matches column against a SQL LIKE pattern (% and _ wildcards).
func Like(column, pattern string) Filter {
	return Filter{Column: column, Op: OpLike, Value: pattern}
}

// Store is implemented by every backend.
type Store interface {
	// FetchByID returns the row whose key equals id, or an *Error of
	// KindNotFound.
	FetchByID(ctx context.Context, t Table, id any) (Row, error)

	// Fetch returns every row matching all filters, ordered by key.
	Fetch(ctx context.Context, t Table, filters ...Filter) ([]Row, error)

	// Update writes values onto every row matching all filters and returns
	// the number of rows affected. At least one filter is required.
	Update(ctx context.Context, t Table, values Row, filters ...Filter) (int64, error)
}

// Text renders a row value as text: nil becomes "", numbers print without
// trailing zeros, []byte is decoded.
func Text(v any) string { return toString(v) }
