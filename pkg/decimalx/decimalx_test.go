package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGrouped(t *testing.T) {
	testCases := []struct {
		name   string
		d      decimal.Decimal
		places int32
		want   string
	}{
		{name: "small", d: MustFromString("12.345"), places: 2, want: "12.35"},
		{name: "thousands", d: MustFromString("1234.5"), places: 2, want: "1,234.50"},
		{name: "millions", d: MustFromString("1234567.891"), places: 2, want: "1,234,567.89"},
		{name: "exact group", d: MustFromString("123456"), places: 0, want: "123,456"},
		{name: "negative", d: MustFromString("-98765.4"), places: 1, want: "-98,765.4"},
		{name: "zero", d: decimal.Zero, places: 2, want: "0.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Grouped(tc.d, tc.places))
		})
	}
}

func TestFromString(t *testing.T) {
	d, err := FromString("42.5")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(42.5)))

	_, err = FromString("forty")
	assert.ErrorContains(t, err, "forty")
}
