package instruments

import "math"

// DiscountFactor is the flat, continuously compounded discount factor.
func DiscountFactor(rate, tYears float64) float64 {
	return math.Exp(-rate * tYears)
}

// Forward is the covered-interest-parity forward for a spot quoted in
// foreign units per domestic unit.
func Forward(spot, rDom, rFor, tYears float64) float64 {
	return spot * math.Exp((rDom-rFor)*tYears)
}

// remaining returns the time left to maturity, floored at zero.
func remaining(tenorYears, tYears float64) float64 {
	return math.Max(tenorYears-tYears, 0)
}

// MonthlySchedule returns the monthly payment times, in years, of a trade
// with the given tenor.
func MonthlySchedule(tenorYears int) []float64 {
	n := tenorYears * 12
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) / 12.0
	}
	return out
}
