// Package market holds the historical spot data the engine samples from and
// the empirical FX exposure derived from it.
package market

import (
	"fmt"
	"math"
	"time"
)

// Series is one currency's spot history quoted in LCY per USD. Dates are
// strictly increasing and gaps have already been forward-filled. A Series is
// read-only once loaded.
type Series struct {
	Currency string
	Dates    []time.Time
	Rates    []float64
}

// Len returns the number of observed points.
func (s Series) Len() int {
	return len(s.Rates)
}

// At returns the rate at index i.
func (s Series) At(i int) float64 {
	return s.Rates[i]
}

// Last returns the most recent observation and false when the series is
// empty.
func (s Series) Last() (float64, bool) {
	if len(s.Rates) == 0 {
		return 0, false
	}
	return s.Rates[len(s.Rates)-1], true
}

// Validate checks the ordering contract and that every rate is positive
// and finite.
func (s Series) Validate() error {
	if len(s.Dates) != len(s.Rates) {
		return fmt.Errorf("series %s: %d dates but %d rates", s.Currency, len(s.Dates), len(s.Rates))
	}
	for i, r := range s.Rates {
		if !(r > 0) || math.IsInf(r, 1) {
			return fmt.Errorf("series %s: non-positive or infinite rate %v at %s", s.Currency, r, s.Dates[i].Format("2006-01-02"))
		}
		if i > 0 && !s.Dates[i].After(s.Dates[i-1]) {
			return fmt.Errorf("series %s: dates not strictly increasing at %s", s.Currency, s.Dates[i].Format("2006-01-02"))
		}
	}
	return nil
}
