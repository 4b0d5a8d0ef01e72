// Package stats holds the empirical statistics shared by the exposure
// sampler, the loss engine and capital sizing.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sorted returns an ascending copy of xs. The input is left untouched.
func Sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Quantile returns the q-quantile of xs using linear interpolation between
// closest ranks, h = (n-1)*q. Returns 0 for an empty input.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return QuantileSorted(Sorted(xs), q)
}

// QuantileSorted is Quantile for input that is already ascending. This is
// numpy's default linear method; gonum's stat.LinInterp estimator places the
// knots differently and gives other values on small samples.
func QuantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Mean returns the arithmetic mean, 0 for an empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// TailMean returns the mean of all values >= threshold and the number of
// values that were averaged.
func TailMean(xs []float64, threshold float64) (float64, int) {
	var tail []float64
	for _, x := range xs {
		if x >= threshold {
			tail = append(tail, x)
		}
	}
	if len(tail) == 0 {
		return 0, 0
	}
	return floats.Sum(tail) / float64(len(tail)), len(tail)
}

// FractionPositive is the share of values strictly above zero.
func FractionPositive(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := floats.Count(func(x float64) bool { return x > 0 }, xs)
	return float64(n) / float64(len(xs))
}

// NonDecreasing reports whether xs never drops by more than tol.
func NonDecreasing(xs []float64, tol float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1]-tol {
			return false
		}
	}
	return true
}
