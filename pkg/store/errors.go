package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound matches (errors.Is) every *Error of KindNotFound.
var ErrNotFound = errors.New("store: record not found")

// Kind classifies a backend failure by how callers should react to it.
type Kind int

const (
	// KindOther is any failure that is neither retryable nor structural.
	KindOther Kind = iota
	// KindNotFound means the requested row does not exist.
	KindNotFound
	// KindTransient is a network or backend hiccup worth retrying.
	KindTransient
	// KindSchema means a column or table is missing or has an incompatible type.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindSchema:
		return "schema_mismatch"
	default:
		return "other"
	}
}

// Error is the structured error every Store returns.
type Error struct {
	Op      string // fetch | update
	Table   string
	Kind    Kind
	Code    string // backend code, e.g. a SQLSTATE
	Message string
	Hint    string
	Column  string // offending column for KindSchema, when known
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "store: %s %s: %s", e.Op, e.Table, e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "; hint: %s", e.Hint)
	}
	return b.String()
}

// Unwrap returns the underlying driver error.
func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match not-found errors.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// KindOf returns the Kind of err, or KindOther when err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOther
}

func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsTransient(err error) bool      { return KindOf(err) == KindTransient }
func IsSchemaMismatch(err error) bool { return KindOf(err) == KindSchema }
