package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Good for development and tests; not
// durable across restarts.
//
// Tables declared with Define reject updates to unknown columns with a
// KindSchema error, like a real database would.
type MemoryStore struct {
	mu      sync.RWMutex
	tables  map[string][]Row
	columns map[string]map[string]bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		tables:  map[string][]Row{},
		columns: map[string]map[string]bool{},
	}
}

// Define declares the columns of table.
func (m *MemoryStore) Define(table string, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	m.columns[table] = set
}

// Insert appends copies of rows to table.
func (m *MemoryStore) Insert(table string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], clone(r))
	}
}

// Rows returns a copy of every row in table, in insertion order.
func (m *MemoryStore) Rows(table string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Row, len(m.tables[table]))
	for i, r := range m.tables[table] {
		out[i] = clone(r)
	}
	return out
}

func (m *MemoryStore) FetchByID(ctx context.Context, t Table, id any) (Row, error) {
	rows, err := m.Fetch(ctx, t, Eq(t.key(), id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{Op: "fetch", Table: t.Name, Kind: KindNotFound,
			Message: "no row with " + t.key() + " = " + toString(id)}
	}
	return rows[0], nil
}

func (m *MemoryStore) Fetch(ctx context.Context, t Table, filters ...Filter) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("fetch", t.Name, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkColumns("fetch", t.Name, filterColumns(filters)); err != nil {
		return nil, err
	}

	var out []Row
	for _, r := range m.tables[t.Name] {
		if matchAll(r, filters) {
			out = append(out, clone(r))
		}
	}

	key := t.key()
	sort.SliceStable(out, func(i, j int) bool { return lessKey(out[i][key], out[j][key]) })
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, t Table, values Row, filters ...Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, classify("update", t.Name, err)
	}
	if len(filters) == 0 {
		return 0, &Error{Op: "update", Table: t.Name, Kind: KindOther,
			Message: "refusing to update without a filter"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cols := filterColumns(filters)
	for c := range values {
		cols = append(cols, c)
	}
	if err := m.checkColumns("update", t.Name, cols); err != nil {
		return 0, err
	}

	var n int64
	for _, r := range m.tables[t.Name] {
		if !matchAll(r, filters) {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		n++
	}
	return n, nil
}

func (m *MemoryStore) checkColumns(op, table string, cols []string) error {
	known, ok := m.columns[table]
	if !ok {
		return nil
	}
	for _, c := range cols {
		if !known[c] {
			return &Error{Op: op, Table: table, Kind: KindSchema, Column: c,
				Message: fmt.Sprintf("column %q of relation %q does not exist", c, table)}
		}
	}
	return nil
}

func filterColumns(filters []Filter) []string {
	cols := make([]string, len(filters))
	for i, f := range filters {
		cols[i] = f.Column
	}
	return cols
}

func matchAll(r Row, filters []Filter) bool {
	for _, f := range filters {
		v := r[f.Column]
		switch f.Op {
		case OpEq:
			if v == nil || f.Value == nil || toString(v) != toString(f.Value) {
				return false
			}
		case OpIsNull:
			if v != nil {
				return false
			}
		case OpNotNull:
			if v == nil {
				return false
			}
		case OpLike:
			if v == nil || !likeToRegexp(toString(f.Value)).MatchString(toString(v)) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func likeToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func lessKey(a, b any) bool {
	ai, aok := toInt(a)
	bi, bok := toInt(b)
	if aok && bok {
		return ai < bi
	}
	return toString(a) < toString(b)
}

func toInt(v any) (int64, bool) {
	n, err := strconv.ParseInt(toString(v), 10, 64)
	return n, err == nil
}

func clone(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// toString renders a scanned value the way it would print in SQL.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
