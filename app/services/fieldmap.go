package services

import (
	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

// Product is a products row decoded through the configured column names.
type Product struct {
	ID             any
	Name           string
	Specs          string
	SpecialEffects string
	Dimension      string
	PlateNo        string
	Ink            string
	ArtworkCode    string
	UPS            any
	SizeID         any
	CustomerID     any
	PaperTypeID    any
	GSMID          any
}

// decodeProduct reads row through ts. A configured column absent from the
// row is a schema mismatch.
func decodeProduct(row store.Row, ts config.TableSchema) (Product, error) {
	for _, col := range ts.Columns {
		if _, ok := row[col]; !ok {
			return Product{}, &SchemaMismatchError{Table: ts.Name, Column: col}
		}
	}
	text := func(logical string) string { return store.Text(row[ts.Col(logical)]) }
	return Product{
		ID:             row[ts.Key],
		Name:           text("product_name"),
		Specs:          text("specs"),
		SpecialEffects: text("special_effects"),
		Dimension:      text("dimension"),
		PlateNo:        text("plate_no"),
		Ink:            text("ink"),
		ArtworkCode:    text("artwork_code"),
		UPS:            row[ts.Col("ups")],
		SizeID:         row[ts.Col("size_id")],
		CustomerID:     row[ts.Col("customer_id")],
		PaperTypeID:    row[ts.Col("paper_type_id")],
		GSMID:          row[ts.Col("gsm_id")],
	}, nil
}

// ResolvedProduct is a product with every identifier mapped to its display
// name and the specs string recomputed.
type ResolvedProduct struct {
	Product       Product
	Effects       string
	Specs         string
	UPS           *int
	SizeName      string
	CustomerName  string
	PaperTypeName string
	GSMValue      string
	Gaps          []ResolutionGap
}

// ResolveProduct maps p through l. Unknown ids are recorded as gaps and
// counted in metrics; they never fail the resolution.
func (l *Lookups) ResolveProduct(p Product) ResolvedProduct {
	r := ResolvedProduct{Product: p, UPS: ParseUPS(p.UPS)}

	effects := Resolve(p.SpecialEffects, l.SpecialEffects)
	r.Effects = effects.String()
	r.Gaps = append(r.Gaps, effects.Gaps...)

	name := func(t LookupTable, id any) string {
		n, gap := t.Name(id)
		if gap != nil {
			r.Gaps = append(r.Gaps, *gap)
		}
		return n
	}
	r.SizeName = name(l.Sizes, p.SizeID)
	r.CustomerName = name(l.Customers, p.CustomerID)
	r.PaperTypeName = name(l.PaperTypes, p.PaperTypeID)
	r.GSMValue = name(l.GSM, p.GSMID)

	r.Specs = ComposeSpecs(SpecsInput{
		SizeName:  r.SizeName,
		UPS:       r.UPS,
		Dimension: p.Dimension,
		Effects:   r.Effects,
	})

	for _, g := range r.Gaps {
		metrics.ResolutionGaps.WithLabelValues(g.Table).Inc()
	}
	return r
}

// SnapshotField is one order column that mirrors a product attribute.
type SnapshotField struct {
	Name  string // logical order column
	Value func(r *ResolvedProduct) any
}

// SnapshotFields is the single product → order field mapping. The writer
// writes exactly these columns and the auditor compares exactly these.
var SnapshotFields = []SnapshotField{
	{"product_name", func(r *ResolvedProduct) any { return r.Product.Name }},
	{"specs", func(r *ResolvedProduct) any { return r.Specs }},
	{"product_specs", func(r *ResolvedProduct) any { return r.Specs }},
	{"special_effects", func(r *ResolvedProduct) any { return r.Effects }},
	{"dimension", func(r *ResolvedProduct) any { return r.Product.Dimension }},
	{"plate_no", func(r *ResolvedProduct) any { return r.Product.PlateNo }},
	{"ink", func(r *ResolvedProduct) any { return r.Product.Ink }},
	{"artwork_code", func(r *ResolvedProduct) any { return r.Product.ArtworkCode }},
	{"ups", func(r *ResolvedProduct) any {
		if r.UPS == nil {
			return nil
		}
		return int64(*r.UPS)
	}},
	{"customer_name", func(r *ResolvedProduct) any { return r.CustomerName }},
	{"paper_type_name", func(r *ResolvedProduct) any { return r.PaperTypeName }},
	{"gsm_value", func(r *ResolvedProduct) any { return r.GSMValue }},
}

// snapshotRow renders r as an update keyed by physical order columns.
func snapshotRow(r *ResolvedProduct, orders config.TableSchema) store.Row {
	row := make(store.Row, len(SnapshotFields))
	for _, f := range SnapshotFields {
		row[orders.Col(f.Name)] = f.Value(r)
	}
	return row
}

// sameValue compares a stored value with an expected one. NULL and empty
// text are equal; numbers compare by their printed form.
func sameValue(expected, actual any) bool {
	return store.Text(expected) == store.Text(actual)
}

// inSync reports whether order already carries every value in want.
func inSync(order, want store.Row) bool {
	for col, v := range want {
		if !sameValue(v, order[col]) {
			return false
		}
	}
	return true
}
