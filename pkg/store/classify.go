package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	pgColumnRe     = regexp.MustCompile(`column "([^"]+)"`)
	sqliteColumnRe = regexp.MustCompile(`(?:no such column|has no column named):? ([\w."]+)`)
)

// SQLSTATEs that mean the target column/table is missing or has the wrong type.
var pgSchemaCodes = map[string]bool{
	"42703": true, // undefined_column
	"42P01": true, // undefined_table
	"42804": true, // datatype_mismatch
	"22P02": true, // invalid_text_representation
	"42883": true, // undefined_function (operator on incompatible types)
}

func pgTransient(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"): // connection exception
		return true
	case strings.HasPrefix(code, "53"): // insufficient resources
		return true
	case code == "40001", code == "40P01": // serialization failure, deadlock
		return true
	case code == "57014", code == "57P01", code == "57P02", code == "57P03":
		return true
	}
	return false
}

// classify turns a driver error into an *Error.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return se
	}

	e := &Error{Op: op, Table: table, Kind: KindOther, Message: err.Error(), Err: err}

	var pgErr *pgconn.PgError
	var sqliteErr sqlite3.Error
	var netErr net.Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		e.Kind = KindNotFound

	case errors.As(err, &pgErr):
		e.Code, e.Message, e.Hint = pgErr.Code, pgErr.Message, pgErr.Hint
		switch {
		case pgSchemaCodes[pgErr.Code]:
			e.Kind = KindSchema
			e.Column = pgErr.ColumnName
			if e.Column == "" {
				e.Column = firstMatch(pgColumnRe, pgErr.Message)
			}
		case pgTransient(pgErr.Code):
			e.Kind = KindTransient
		}

	case errors.As(err, &sqliteErr):
		e.Code = sqliteErr.Code.Error()
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			e.Kind = KindTransient
		case sqliteColumnRe.MatchString(err.Error()), strings.Contains(err.Error(), "no such table"):
			e.Kind = KindSchema
			e.Column = strings.Trim(firstMatch(sqliteColumnRe, err.Error()), `"`)
		}

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.ErrUnexpectedEOF),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err),
		errors.As(err, &netErr):
		e.Kind = KindTransient

	case strings.Contains(err.Error(), "schema cache"):
		// PostgREST reloading its schema cache after a migration.
		e.Kind = KindTransient
	}

	return e
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
