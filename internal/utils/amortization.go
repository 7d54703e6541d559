package utils

import "math"

// MonthlyEMICents computes the fixed monthly installment for a loan of
// principalCents over tenureMonths at annualRatePct per year, using the
// standard amortization formula EMI = P*r*(1+r)^n / ((1+r)^n - 1) with
// r = annualRatePct/12/100. The result is rounded half-up to whole cents.
// A zero rate degrades to straight principal division.
func MonthlyEMICents(principalCents int64, annualRatePct float64, tenureMonths int) int64 {
	if principalCents <= 0 || tenureMonths <= 0 {
		return 0
	}
	if annualRatePct == 0 {
		return RoundCents(float64(principalCents) / float64(tenureMonths))
	}
	r := annualRatePct / 12 / 100
	factor := math.Pow(1+r, float64(tenureMonths))
	emi := float64(principalCents) * r * factor / (factor - 1)
	return RoundCents(emi)
}

// ThirtyDayInterestCents computes simple interest accrued on the outstanding
// principal over a 30-day period: P * rate/100 * 30/365, rounded half-up.
func ThirtyDayInterestCents(principalCents int64, annualRatePct float64) int64 {
	if principalCents <= 0 || annualRatePct <= 0 {
		return 0
	}
	return RoundCents(float64(principalCents) * annualRatePct / 100 * 30 / 365)
}
