package decimalx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func FromString(s string) (decimal.Decimal, error) {
	res, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return res, nil
}
