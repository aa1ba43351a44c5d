package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/ordersync/pkg/store"
)

// SpecsSeparator joins the parts of a specs string.
const SpecsSeparator = " | "

// SpecsInput is everything the specs string is built from.
type SpecsInput struct {
	SizeName  string
	UPS       *int
	Dimension string
	Effects   string // already resolved names
}

// ComposeSpecs builds "size | UPS: n | dimension | effects", dropping empty
// parts. UPS is shown only when positive.
func ComposeSpecs(in SpecsInput) string {
	parts := make([]string, 0, 4)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(in.SizeName)
	if in.UPS != nil && *in.UPS > 0 {
		add("UPS: " + strconv.Itoa(*in.UPS))
	}
	add(in.Dimension)
	add(in.Effects)

	return strings.Join(parts, SpecsSeparator)
}

// ParseUPS coerces a stored ups value to a whole number. Values that do not
// parse ("abc", "") or are fractional ("2.5") yield nil; orders store ups
// as an integer. Zero is kept.
func ParseUPS(v any) *int {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(store.Text(v)), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	n := int(f)
	return &n
}
