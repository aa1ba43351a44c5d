package orm

import (
	"context"
	"math"

	"github.com/shashiranjanraj/ordersync/pkg/database"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

// Pagination describes one page of results.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// DB starts a query on the global connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// On starts a query on db.
func On(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value string) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// GetWithPagination loads one page into dest. page starts at 1.
func (q *Query) GetWithPagination(dest interface{}, page, limit int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	p := Pagination{Page: page, Limit: limit}
	if err := q.db.Count(&p.Total).Error; err != nil {
		return p, err
	}
	p.LastPage = int(math.Ceil(float64(p.Total) / float64(limit)))

	err := q.db.Offset((page - 1) * limit).Limit(limit).Find(dest).Error
	return p, err
}
