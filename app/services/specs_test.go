package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/ordersync/app/services"
)

func intp(n int) *int { return &n }

func TestComposeSpecs(t *testing.T) {
	tests := []struct {
		name string
		in   services.SpecsInput
		want string
	}{
		{
			name: "all parts",
			in:   services.SpecsInput{SizeName: "A4", UPS: intp(4), Dimension: "10x20", Effects: "Spot UV | Gold Foil"},
			want: "A4 | UPS: 4 | 10x20 | Spot UV | Gold Foil",
		},
		{
			name: "empty parts dropped",
			in:   services.SpecsInput{SizeName: "", UPS: nil, Dimension: "10x20", Effects: ""},
			want: "10x20",
		},
		{
			name: "zero and negative ups hidden",
			in:   services.SpecsInput{SizeName: "A4", UPS: intp(-2), Dimension: " "},
			want: "A4",
		},
		{
			name: "nothing",
			in:   services.SpecsInput{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ComposeSpecs(tt.in))
		})
	}
}

func TestParseUPS(t *testing.T) {
	tests := []struct {
		in   any
		want *int
	}{
		{"4", intp(4)},
		{" 12 ", intp(12)},
		{int64(6), intp(6)},
		{float64(3), intp(3)},
		{"4.0", intp(4)},
		{"-1", intp(-1)},
		{"abc", nil},
		{"", nil},
		{"2.5", nil},
		{"0", intp(0)},
		{0, intp(0)},
		{"-0", intp(0)},
		{nil, nil},
		{[]byte("8"), intp(8)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, services.ParseUPS(tt.in), "ParseUPS(%#v)", tt.in)
	}
}
