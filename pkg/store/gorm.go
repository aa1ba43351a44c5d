package store

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore runs the Store contract against any gorm dialector.
type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FetchByID(ctx context.Context, t Table, id any) (Row, error) {
	rows, err := s.Fetch(ctx, t, Eq(t.key(), id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{
			Op: "fetch", Table: t.Name, Kind: KindNotFound,
			Message: "no row with " + t.key() + " = " + toString(id),
			Err:     gorm.ErrRecordNotFound,
		}
	}
	return rows[0], nil
}

func (s *GormStore) Fetch(ctx context.Context, t Table, filters ...Filter) ([]Row, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var raw []map[string]any
	q := where(s.db.WithContext(ctx).Table(t.Name), filters).
		Order(clause.OrderByColumn{Column: clause.Column{Name: t.key()}})
	if err := q.Find(&raw).Error; err != nil {
		return nil, classify("fetch", t.Name, err)
	}

	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = normalize(r)
	}
	return rows, nil
}

func (s *GormStore) Update(ctx context.Context, t Table, values Row, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, &Error{Op: "update", Table: t.Name, Kind: KindOther,
			Message: "refusing to update without a filter", Err: gorm.ErrMissingWhereClause}
	}
	if len(values) == 0 {
		return 0, nil
	}
	defer metrics.ObserveDBQuery("update", time.Now())

	res := where(s.db.WithContext(ctx).Table(t.Name), filters).Updates(map[string]any(values))
	if res.Error != nil {
		return 0, classify("update", t.Name, res.Error)
	}
	return res.RowsAffected, nil
}

// where appends one clause per filter; gorm quotes the column names.
func where(q *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		col := clause.Column{Name: f.Column}
		switch f.Op {
		case OpEq:
			q = q.Where(clause.Eq{Column: col, Value: f.Value})
		case OpIsNull:
			q = q.Where(clause.Eq{Column: col, Value: nil})
		case OpNotNull:
			q = q.Where(clause.Neq{Column: col, Value: nil})
		case OpLike:
			q = q.Where(clause.Like{Column: col, Value: f.Value})
		default:
			_ = q.AddError(errors.New("store: unsupported filter " + f.String()))
		}
	}
	return q
}

// normalize maps driver-specific scan types onto string/int64/float64/bool/time/nil.
func normalize(r map[string]any) Row {
	out := make(Row, len(r))
	for k, v := range r {
		switch x := v.(type) {
		case []byte:
			out[k] = string(x)
		case int:
			out[k] = int64(x)
		case int32:
			out[k] = int64(x)
		case int16:
			out[k] = int64(x)
		case float32:
			out[k] = float64(x)
		case *time.Time:
			if x == nil {
				out[k] = nil
			} else {
				out[k] = *x
			}
		default:
			out[k] = v
		}
	}
	return out
}
