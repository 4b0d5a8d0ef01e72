package instruments

// NDF is a USD-settled non-deliverable forward struck in LCY per USD.
type NDF struct {
	NotionalUSD float64
	Strike      float64
	TenorYears  float64
}

// MTM values the forward at elapsed time tYears. A matured forward is worth
// exactly 0.
func (n NDF) MTM(spotNow, tYears, usdRate, lcyRate float64) float64 {
	rem := remaining(n.TenorYears, tYears)
	if rem == 0 {
		return 0
	}

	fwd := Forward(spotNow, usdRate, lcyRate, rem)
	payoff := n.NotionalUSD * (fwd/n.Strike - 1.0)
	return payoff * DiscountFactor(usdRate, rem)
}
