// Package pricing implements pricebook's price and unit-conversion engine:
// purchase-unit conversion math, price derivation from stored price records,
// and estimated-cost resolution for basket and list entries.
//
// Nothing in this package panics or returns an error. Every computation that
// cannot proceed resolves to an explicit absence, which callers display as
// "no price available" rather than a failure.
package pricing

import (
	"math"
	"strconv"
)

// ConversionFromInput converts the number a user typed in the purchase-unit
// form into the canonical stored ConversionToBase. In the normal orientation
// the user states how many purchase units make one base unit and the value is
// stored as-is. In the inverted orientation the user states how many base
// units make one purchase unit, so the reciprocal is stored; downstream price
// math never sees the difference.
func ConversionFromInput(value float64, inverted bool) float64 {
	if inverted {
		return 1 / value
	}
	return value
}

// DisplayConversion is the inverse of ConversionFromInput: it recovers the
// number the user originally entered from the stored value.
func DisplayConversion(conversionToBase float64, inverted bool) float64 {
	if inverted {
		return 1 / conversionToBase
	}
	return conversionToBase
}

// FormatConversion renders a purchase unit's conversion as a human string in
// one of two fixed forms:
//
//	non-inverted: "1 <base> = <n> <purchase>"
//	inverted:     "1 <purchase> = <n> <base>"
func FormatConversion(conversionToBase float64, baseSymbol, purchaseSymbol string, inverted bool) string {
	if inverted {
		return "1 " + purchaseSymbol + " = " + formatNumber(1/conversionToBase) + " " + baseSymbol
	}
	return "1 " + baseSymbol + " = " + formatNumber(conversionToBase) + " " + purchaseSymbol
}

// formatNumber renders whole values without a decimal point and everything
// else with up to 5 significant digits. Values within float rounding noise of
// an integer count as whole, so reciprocals like 1/0.00125 still print "800".
func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	r := math.Round(v)
	if v == r || math.Abs(v-r) < 1e-9*math.Max(1, math.Abs(v)) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}
