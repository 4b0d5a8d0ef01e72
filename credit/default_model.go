// Package credit models default timing under a constant hazard rate.
package credit

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrDomain is returned for an annual PD outside (0, 1).
var ErrDomain = errors.New("credit: annual pd must be in (0, 1)")

// NoDefault marks a draw that lands after maturity.
var NoDefault = math.Inf(1)

// IsCensored reports whether t is the no-default-before-maturity sentinel.
func IsCensored(t float64) bool {
	return math.IsInf(t, 1)
}

// Hazard converts an annual default probability into a constant hazard
// rate: lambda = -ln(1 - pd).
func Hazard(pdAnnual float64) (float64, error) {
	if !(pdAnnual > 0 && pdAnnual < 1) {
		return 0, fmt.Errorf("%w: got %v", ErrDomain, pdAnnual)
	}
	return -math.Log(1 - pdAnnual), nil
}

// NewRand returns the generator used for every draw in this module. The
// same seed always yields the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DrawDefaultTimes draws n exponential default times by inverse transform,
// t = -ln(1-u)/lambda. Times beyond tenorYears are censored to NoDefault.
func DrawDefaultTimes(pdAnnual, tenorYears float64, n int, seed uint64) ([]float64, error) {
	lambda, err := Hazard(pdAnnual)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("credit: negative draw count %d", n)
	}

	rng := NewRand(seed)
	out := make([]float64, n)
	for i := range out {
		u := rng.Float64()
		t := -math.Log(1-u) / lambda
		if t > tenorYears {
			t = NoDefault
		}
		out[i] = t
	}
	return out, nil
}

// DrawDefaultTime is DrawDefaultTimes for a single draw.
func DrawDefaultTime(pdAnnual, tenorYears float64, seed uint64) (float64, error) {
	ts, err := DrawDefaultTimes(pdAnnual, tenorYears, 1, seed)
	if err != nil {
		return 0, err
	}
	return ts[0], nil
}

// DefaultProbability is the probability of default before t years under the
// hazard implied by pdAnnual.
func DefaultProbability(pdAnnual, tYears float64) (float64, error) {
	lambda, err := Hazard(pdAnnual)
	if err != nil {
		return 0, err
	}
	return 1 - math.Exp(-lambda*tYears), nil
}
