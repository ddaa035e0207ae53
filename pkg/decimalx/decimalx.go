package decimalx

import (
	"strings"

	"github.com/shopspring/decimal"
)

func MustFromString(s string) decimal.Decimal {
	f, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Grouped 千分位格式化, 例如 1234567.891 -> 1,234,567.89
func Grouped(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return sign + b.String()
}

func GroupedFloat(f float64, places int32) string {
	return Grouped(decimal.NewFromFloat(f), places)
}
