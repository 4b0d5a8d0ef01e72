package market

import (
	"math"

	"github.com/rustyeddy/guarantee/stats"
)

// PositiveExposureSamples returns, for every origin t0 and every later
// index t within tenorMonths of it, the fractional LCY depreciation
// max(s[t0]/s[t] - 1, 0).
//
// Windows overlap, so the samples are serially correlated rather than
// i.i.d. Quantiles taken downstream inherit that approximation.
func PositiveExposureSamples(s Series, tenorMonths int) []float64 {
	n := s.Len()
	if n < 2 || tenorMonths <= 0 {
		return nil
	}

	out := make([]float64, 0, n*min(tenorMonths, n))
	for t0 := 0; t0 < n-1; t0++ {
		end := min(n, t0+tenorMonths+1)
		origin := s.Rates[t0]
		for t := t0 + 1; t < end; t++ {
			out = append(out, math.Max(origin/s.Rates[t]-1.0, 0))
		}
	}
	return out
}

// ExposureSummary describes an empirical exposure distribution.
type ExposureSummary struct {
	PPositive float64 `json:"p_positive"`
	Mean      float64 `json:"mean"`
	P90       float64 `json:"p90"`
	P99       float64 `json:"p99"`
	P995      float64 `json:"p995"`
}

// Summarize reports the probability of a positive exposure, the mean and
// the 90/99/99.5% quantiles. Empty input gives the zero summary.
func Summarize(samples []float64) ExposureSummary {
	if len(samples) == 0 {
		return ExposureSummary{}
	}
	sorted := stats.Sorted(samples)
	return ExposureSummary{
		PPositive: stats.FractionPositive(samples),
		Mean:      stats.Mean(samples),
		P90:       stats.QuantileSorted(sorted, 0.90),
		P99:       stats.QuantileSorted(sorted, 0.99),
		P995:      stats.QuantileSorted(sorted, 0.995),
	}
}
