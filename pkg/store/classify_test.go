package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		column string
	}{
		{
			name:   "pg undefined column",
			err:    &pgconn.PgError{Code: "42703", Message: `column "plate_no" of relation "orders" does not exist`},
			kind:   KindSchema,
			column: "plate_no",
		},
		{
			name:   "pg datatype mismatch with column name",
			err:    &pgconn.PgError{Code: "42804", Message: "type mismatch", ColumnName: "ups"},
			kind:   KindSchema,
			column: "ups",
		},
		{
			name: "pg invalid integer text",
			err:  &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type integer: "abc"`},
			kind: KindSchema,
		},
		{name: "pg deadlock", err: &pgconn.PgError{Code: "40P01"}, kind: KindTransient},
		{name: "pg connection failure", err: &pgconn.PgError{Code: "08006"}, kind: KindTransient},
		{name: "pg admin shutdown", err: &pgconn.PgError{Code: "57P01"}, kind: KindTransient},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, kind: KindOther},
		{name: "sqlite busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, kind: KindTransient},
		{name: "record not found", err: gorm.ErrRecordNotFound, kind: KindNotFound},
		{name: "deadline", err: context.DeadlineExceeded, kind: KindTransient},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), kind: KindTransient},
		{name: "schema cache reload", err: errors.New("Could not query the database for the schema cache. Retrying."), kind: KindTransient},
		{name: "anything else", err: errors.New("boom"), kind: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("update", "orders", tt.err)

			var se *Error
			assert.True(t, errors.As(err, &se))
			assert.Equal(t, tt.kind, se.Kind, "kind %s", se.Kind)
			assert.Equal(t, tt.column, se.Column)
			assert.Equal(t, "orders", se.Table)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestClassifyKeepsStoreErrors(t *testing.T) {
	orig := &Error{Op: "fetch", Table: "products", Kind: KindSchema, Column: "specs"}
	assert.Same(t, orig, classify("update", "orders", fmt.Errorf("wrapped: %w", orig)))
	assert.Nil(t, classify("update", "orders", nil))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: "update", Table: "orders", Message: "bad", Code: "42703", Hint: "check migrations"}
	assert.Equal(t, "store: update orders: bad (code 42703); hint: check migrations", err.Error())
}
