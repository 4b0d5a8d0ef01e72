// Package instruments values the lender's FX hedges (cross-currency swaps and
// non-deliverable forwards) on flat curves.
//
// All values are from the lender's perspective: a positive MTM is an amount
// the defaulted borrower owes the lender, which the guarantee may cover.
package instruments

// CCS is a fixed/fixed cross-currency swap with notional exchange. The
// lender receives USD and pays local currency.
type CCS struct {
	NotionalUSD  float64
	TradeSpot    float64 // LCY per USD at inception
	FixedUSDRate float64
	FixedLCYRate float64
	TenorYears   float64
}

// MTM values the swap at elapsed time tYears given the current spot (LCY per
// USD) and flat USD/LCY discount rates. A matured swap is worth exactly 0.
func (c CCS) MTM(spotNow, tYears, usdRate, lcyRate float64) float64 {
	rem := remaining(c.TenorYears, tYears)
	if rem == 0 {
		return 0
	}

	usdLeg := c.NotionalUSD * (1 + c.FixedUSDRate*rem) * DiscountFactor(usdRate, rem)

	lcyNotional := c.NotionalUSD * c.TradeSpot
	lcyLeg := (lcyNotional / spotNow) * (1 + c.FixedLCYRate*rem) * DiscountFactor(lcyRate, rem)

	return usdLeg - lcyLeg
}
