// Package validate checks struct fields against rules in a `validate` tag.
//
// Supported rules (comma-separated):
//
//	required   field must be present and non-empty
//	nullable   if nil or empty, skip the remaining rules
//	min=N      string: min char length | number: min value
//	max=N      string: max char length | number: max value
//	gte=N      number >= N
//	id_list    numeric ids joined by "|" (or "/"), e.g. "1|147"
//
// Pointer fields are dereferenced; a nil pointer counts as empty, which is
// how partial edits leave a field untouched:
//
//	type ProductInput struct {
//	    ProductName    *string `json:"product_name"    validate:"nullable,min=1,max=255"`
//	    SpecialEffects *string `json:"special_effects" validate:"nullable,id_list"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		rules := strings.Split(tag, ",")
		value, present := deref(rv.Field(i))

		if hasRule(rules, "nullable") && (!present || isEmpty(value)) {
			continue
		}

		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value, present); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

var idListRE = regexp.MustCompile(`^\s*\d+(\s*[|/]\s*\d+)*\s*$`)

func applyRule(rule, field string, v reflect.Value, present bool) string {
	key, param, _ := strings.Cut(rule, "=")

	if key == "required" {
		if !present || isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}
	if !present {
		return ""
	}

	switch key {
	case "min":
		n := mustParseFloat(param)
		if v.Kind() == reflect.String && float64(utf8.RuneCountInString(v.String())) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		if isNumericKind(v) && toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if v.Kind() == reflect.String && float64(utf8.RuneCountInString(v.String())) > n {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
		}
		if isNumericKind(v) && toFloat(v) > n {
			return fmt.Sprintf("The %s may not be greater than %s.", field, param)
		}
	case "gte":
		if isNumericKind(v) && toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "id_list":
		if v.Kind() == reflect.String && strings.TrimSpace(v.String()) != "" && !idListRE.MatchString(v.String()) {
			return fmt.Sprintf("The %s must be numeric ids separated by |.", field)
		}
	}
	return ""
}

// deref follows pointers. present is false for a nil pointer.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(f.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
