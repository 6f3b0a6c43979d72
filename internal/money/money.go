// Package money formats prices the way the storefront displays them:
// a currency symbol prefix, thousands separators and at most two decimals
// with trailing zeros dropped ("N2,000", "N1,250.5").
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Formatter struct {
	Symbol string
}

func NewFormatter(symbol string) Formatter {
	return Formatter{Symbol: symbol}
}

func (f Formatter) Format(d decimal.Decimal) string {
	return f.Symbol + Group(d)
}

// Group renders d with comma thousands separators.
func Group(d decimal.Decimal) string {
	s := d.Round(2).String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
