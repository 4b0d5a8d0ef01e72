package sim

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/guarantee/credit"
	"github.com/rustyeddy/guarantee/guarantee"
	"github.com/rustyeddy/guarantee/instruments"
	"github.com/rustyeddy/guarantee/market"
)

// Inputs are read-only for the duration of a run and shared by every
// worker without locking.
type Inputs struct {
	Currencies  []string
	History     map[string]market.Series
	Weights     map[string]float64
	NotionalUSD float64
	TenorYears  float64

	// StressPD is the annual PD that drives the default draws.
	StressPD float64

	Guarantee guarantee.Terms
	Blend     instruments.Blend

	// Flat discount rates. LCYRates overrides LCYRate per currency.
	USDRate  float64
	LCYRate  float64
	LCYRates map[string]float64

	// Fixed coupons of the cross-currency swap legs.
	FixedUSDRate float64
	FixedLCYRate float64
}

// Validate checks the preconditions a run relies on. Short series are not
// an error; they are skipped per trial.
func (in Inputs) Validate() error {
	if len(in.Currencies) == 0 {
		return fmt.Errorf("sim: no currencies")
	}
	if in.NotionalUSD <= 0 {
		return fmt.Errorf("sim: notional must be positive, got %v", in.NotionalUSD)
	}
	if in.TenorYears <= 0 {
		return fmt.Errorf("sim: tenor must be positive, got %v", in.TenorYears)
	}
	if _, err := credit.Hazard(in.StressPD); err != nil {
		return fmt.Errorf("sim: stress pd: %w", err)
	}
	var missing []string
	for _, c := range in.Currencies {
		if _, ok := in.History[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("sim: no history for currencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (in Inputs) lcyRate(ccy string) float64 {
	if r, ok := in.LCYRates[ccy]; ok {
		return r
	}
	return in.LCYRate
}
