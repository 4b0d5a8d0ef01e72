package sim

import (
	"math"

	"github.com/rustyeddy/guarantee/credit"
	"github.com/rustyeddy/guarantee/guarantee"
	"github.com/rustyeddy/guarantee/instruments"
)

// minObservations is the shortest series a trial will sample from.
const minObservations = 3

// Outcome is what happened to one currency in one trial.
type Outcome int

const (
	OutcomeDegenerate Outcome = iota // too little history
	OutcomeCensored                  // no default before maturity
	OutcomeDefault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDegenerate:
		return "degenerate"
	case OutcomeCensored:
		return "censored"
	case OutcomeDefault:
		return "default"
	}
	return "unknown"
}

// Draw is one currency's contribution to a trial.
type Draw struct {
	Currency    string
	Outcome     Outcome
	Origin      int
	DefaultTime float64
	Spot        float64
	MTM         float64
	Payout      float64
}

// Trial is one Monte Carlo draw. It is discarded once its loss has been
// recorded.
type Trial struct {
	Index int
	Draws []Draw
	Loss  float64
}

// RunTrial evaluates trial i. It is a pure function of (i, seed, in).
func RunTrial(i int, seed uint64, in Inputs) (Trial, error) {
	rng := credit.NewRand(SubSeed(seed, uint64(i)))
	tr := Trial{Index: i, Draws: make([]Draw, 0, len(in.Currencies))}

	for _, ccy := range in.Currencies {
		d := Draw{Currency: ccy, DefaultTime: credit.NoDefault}
		series := in.History[ccy]
		n := series.Len()
		if n < minObservations {
			d.Outcome = OutcomeDegenerate
			tr.Draws = append(tr.Draws, d)
			continue
		}

		d.Origin = rng.IntN(n - 2)
		s0 := series.At(d.Origin)

		t, err := credit.DrawDefaultTime(in.StressPD, in.TenorYears, rng.Uint64())
		if err != nil {
			return Trial{}, err
		}
		if credit.IsCensored(t) {
			d.Outcome = OutcomeCensored
			tr.Draws = append(tr.Draws, d)
			continue
		}
		d.Outcome = OutcomeDefault
		d.DefaultTime = t

		d.Spot = series.At(spotIndex(d.Origin, t, n))

		notional := in.NotionalUSD * in.Weights[ccy]
		pos := instruments.NewPosition(notional, s0, in.FixedUSDRate, in.FixedLCYRate, in.TenorYears)
		d.MTM = pos.MTM(in.Blend, d.Spot, t, in.USDRate, in.lcyRate(ccy))
		d.Payout = guarantee.Payout(d.MTM, in.Guarantee, notional)

		tr.Loss += d.Payout
		tr.Draws = append(tr.Draws, d)
	}
	return tr, nil
}

// spotIndex is the observation a default at t years after origin is valued
// on: at least one month ahead, rounded half to even, clipped to the last
// point.
func spotIndex(origin int, t float64, n int) int {
	offset := max(1, int(math.RoundToEven(t*12)))
	return min(origin+offset, n-1)
}
