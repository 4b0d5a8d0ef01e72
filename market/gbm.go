package market

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// SimulateGBMPaths draws geometric Brownian motion paths. Each path has
// steps+1 points starting at s0.
func SimulateGBMPaths(s0, mu, sigma, dt float64, steps, paths int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0xda942042e4dd58b5))

	drift := (mu - 0.5*sigma*sigma) * dt
	vol := sigma * math.Sqrt(dt)

	out := make([][]float64, paths)
	for p := range out {
		path := make([]float64, steps+1)
		path[0] = s0
		logS := math.Log(s0)
		for i := 1; i <= steps; i++ {
			logS += drift + vol*rng.NormFloat64()
			path[i] = math.Exp(logS)
		}
		out[p] = path
	}
	return out
}

// SyntheticMonthly builds a month-end Series from one GBM path. Used for
// demos and tests when no history file is at hand.
func SyntheticMonthly(currency string, start time.Time, s0, mu, sigma float64, months int, seed uint64) (Series, error) {
	if months < 1 {
		return Series{}, fmt.Errorf("synthetic %s: need at least one month, got %d", currency, months)
	}
	if s0 <= 0 {
		return Series{}, fmt.Errorf("synthetic %s: starting spot must be positive", currency)
	}
	path := SimulateGBMPaths(s0, mu, sigma, 1.0/12.0, months-1, 1, seed)[0]

	s := Series{
		Currency: currency,
		Dates:    make([]time.Time, months),
		Rates:    path,
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := range s.Dates {
		// last day of month i
		s.Dates[i] = first.AddDate(0, i+1, -1)
	}
	return s, nil
}
