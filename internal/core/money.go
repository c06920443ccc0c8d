package core

import (
	"github.com/shopspring/decimal"
)

// LineValue returns qty × unit without rounding.
func LineValue(qty, unit decimal.Decimal) decimal.Decimal {
	return qty.Mul(unit)
}

// Sum adds values exactly. Order of the inputs does not affect the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// EqualAll reports whether every value equals want. Comparison ignores scale,
// so 200 and 200.00 are equal.
func EqualAll(want decimal.Decimal, values ...decimal.Decimal) bool {
	for _, v := range values {
		if !v.Equal(want) {
			return false
		}
	}
	return true
}

// FormatAmount renders d with at least two decimal places and never drops
// significant digits: 200 -> "200.00", 0.125 -> "0.125".
func FormatAmount(d decimal.Decimal) string {
	places := int32(2)
	if scale := -d.Exponent(); scale > places {
		places = scale
	}
	return d.StringFixed(places)
}
