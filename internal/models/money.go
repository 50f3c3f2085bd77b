package models

import (
	"github.com/shopspring/decimal"
)

// Cent is the smallest posting unit.
var Cent = decimal.New(1, -2)

// RoundCents rounds an amount half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsNearZero reports whether the magnitude of d is below one cent.
func IsNearZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Cent)
}

// SumDecimals adds the given amounts.
func SumDecimals(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
