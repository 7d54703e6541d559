package utils

import (
	"fmt"
	"math"
)

// Cents converts a decimal amount to integer cents, rounding half-up.
// Amounts in this system are non-negative, so floor(x+0.5) is exact.
func Cents(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}

// RoundCents rounds a fractional cent value half-up to whole cents.
func RoundCents(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// FormatAmount renders cents as a fixed two-decimal string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// PercentOfCents computes pct% of an amount in cents, rounded half-up.
func PercentOfCents(cents int64, pct float64) int64 {
	return RoundCents(float64(cents) * pct / 100)
}
