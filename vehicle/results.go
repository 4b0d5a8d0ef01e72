package vehicle

import (
	"strings"
	"time"

	"github.com/rustyeddy/guarantee/capital"
	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/journal"
	"github.com/rustyeddy/guarantee/market"
	"github.com/rustyeddy/guarantee/sim"
)

// CurrencyStats is the exposure summary of one currency.
type CurrencyStats struct {
	Currency     string
	Observations int
	Weight       float64
	market.ExposureSummary
}

// Scenario is one row of the expected-loss table. Values are bps of
// notional per year.
type Scenario struct {
	PD           float64
	ELBps        float64
	NetMarginBps float64
}

// DefaultPoint is the cumulative probability of default by Years at the
// stress PD.
type DefaultPoint struct {
	Years       float64
	Probability float64
}

// ROECurve is equity ROE across a leverage axis.
type ROECurve struct {
	Label    string
	Leverage []float64
	ROE      []float64
}

// Check is a named pass/fail result shown in the report.
type Check struct {
	Name   string
	Passed bool
}

// Results is everything a run produces.
type Results struct {
	RunID     string
	CreatedAt time.Time
	Config    *config.Config

	Currencies    []CurrencyStats
	PortfolioMean float64
	Scenarios     []Scenario
	DefaultCurve  []DefaultPoint

	// Severity capital is a fraction of notional.
	SeverityCapital float64
	ImpliedLeverage float64

	// Losses is nil when the Monte Carlo phase did not run.
	Losses     *sim.LossDistribution
	TailMethod capital.Method
	TailLoss   float64
	Exceedance []sim.ExceedancePoint

	// ExpectedLoss is USD per year; ExpectedLossSource says how it was
	// obtained.
	ExpectedLoss       float64
	ExpectedLossSource string

	Returns         capital.Snapshot
	Tranches        []capital.TrancheAmount
	TargetROE       float64
	BreakEvenFeeBps float64
	Curves          []ROECurve

	Checks   []Check
	Warnings []string
}

// Incomplete reports a cancelled Monte Carlo phase.
func (r *Results) Incomplete() bool {
	return r.Losses != nil && r.Losses.Incomplete
}

// MaturityDefaultProbability is the analytic chance that a single currency
// draw defaults before maturity.
func (r *Results) MaturityDefaultProbability() float64 {
	if len(r.DefaultCurve) == 0 {
		return 0
	}
	return r.DefaultCurve[len(r.DefaultCurve)-1].Probability
}

// SimulatedDefaultRate is the share of sampled currency draws that
// defaulted. Degenerate draws are excluded.
func (r *Results) SimulatedDefaultRate() float64 {
	if r.Losses == nil {
		return 0
	}
	n := r.Losses.Defaults + r.Losses.Censored
	if n == 0 {
		return 0
	}
	return float64(r.Losses.Defaults) / float64(n)
}

// AllChecksPassed is true when every acceptance check passed.
func (r *Results) AllChecksPassed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Record converts the results to a journal row.
func (r *Results) Record() journal.RunRecord {
	rec := journal.RunRecord{
		RunID:           r.RunID,
		CreatedAt:       r.CreatedAt,
		Seed:            r.Config.Run.Seed,
		Phase:           r.Config.Run.Phase,
		Currencies:      strings.Join(r.Config.Universe.Currencies, ","),
		Notional:        r.Config.Portfolio.NotionalUSDTotal,
		StressPD:        r.Config.StressPD(),
		ExpectedLoss:    r.ExpectedLoss,
		TailMethod:      string(r.TailMethod),
		Confidence:      r.Config.CapitalTarget.Confidence,
		TailLoss:        r.TailLoss,
		SeverityCapital: r.SeverityCapital,
		ImpliedLeverage: r.ImpliedLeverage,
		EquityROE:       r.Returns.EquityROE,
		BreakEvenFeeBps: r.BreakEvenFeeBps,
	}
	if r.Losses != nil {
		rec.Trials = r.Losses.Requested
		rec.Completed = r.Losses.Len()
		rec.Incomplete = r.Losses.Incomplete
	}
	return rec
}
