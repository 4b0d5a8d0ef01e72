package vehicle

import (
	"time"

	"github.com/rustyeddy/guarantee/market"
	"github.com/rustyeddy/guarantee/sim"
)

// Synthetic FX drift and volatility, annualised. LCY drifts weaker against
// USD.
const (
	syntheticDrift = 0.08
	syntheticVol   = 0.15
)

var syntheticStart = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// SyntheticHistory builds monthly GBM spot series for the given currencies.
// Each currency gets its own stream derived from seed.
func SyntheticHistory(currencies []string, months int, seed uint64) (market.History, error) {
	h := market.History{
		FX:    make(map[string]market.Series, len(currencies)),
		Rates: map[string]market.Series{},
	}
	for i, c := range currencies {
		s0 := 100.0 * float64(i+1)
		s, err := market.SyntheticMonthly(c, syntheticStart, s0, syntheticDrift, syntheticVol, months, sim.SubSeed(seed, uint64(i)))
		if err != nil {
			return market.History{}, err
		}
		h.FX[c] = s
	}
	return h, nil
}
