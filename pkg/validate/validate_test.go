package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/ordersync/pkg/validate"
)

type editInput struct {
	Name    *string `json:"name"    validate:"nullable,min=1,max=10"`
	Effects *string `json:"effects" validate:"nullable,id_list"`
	SizeID  *uint   `json:"size_id" validate:"nullable,gte=1"`
	Code    string  `json:"code"    validate:"required,max=4"`
}

func ptr[T any](v T) *T { return &v }

func TestNilPointersAreSkipped(t *testing.T) {
	errs := validate.Struct(editInput{Code: "AW"})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequired(t *testing.T) {
	errs := validate.Struct(&editInput{})
	assert.Contains(t, errs, "code")
}

func TestMaxLengthCountsRunes(t *testing.T) {
	errs := validate.Struct(editInput{Code: "AW", Name: ptr("Éclair Box")})
	assert.NotContains(t, errs, "name")

	errs = validate.Struct(editInput{Code: "AW", Name: ptr("Mailer Box XL")})
	assert.Contains(t, errs, "name")

	errs = validate.Struct(editInput{Code: "AW-17"})
	assert.Contains(t, errs, "code")
}

func TestIDList(t *testing.T) {
	for _, ok := range []string{"1", "1|147", " 1 | 2 ", "3/4"} {
		errs := validate.Struct(editInput{Code: "AW", Effects: ptr(ok)})
		assert.NotContains(t, errs, "effects", ok)
	}
	for _, bad := range []string{"Spot UV", "1|x", "1||2"} {
		errs := validate.Struct(editInput{Code: "AW", Effects: ptr(bad)})
		assert.Contains(t, errs, "effects", bad)
	}
}

func TestGte(t *testing.T) {
	errs := validate.Struct(editInput{Code: "AW", SizeID: ptr(uint(0))})
	assert.NotContains(t, errs, "size_id", "zero is empty under nullable")

	errs = validate.Struct(editInput{Code: "AW", SizeID: ptr(uint(3))})
	assert.False(t, validate.HasErrors(errs))
}
