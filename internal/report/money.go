package report

import "github.com/shopspring/decimal"

// Descale converts a scaled integer into its decimal value: v / 10^digits.
// decimal.New keeps this exact for any digit count.
func Descale(v int64, digits uint32) decimal.Decimal {
	return decimal.New(v, -int32(digits))
}

// money renders a decimal the way every report column does: 2dp, half-up.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
