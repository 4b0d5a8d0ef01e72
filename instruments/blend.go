package instruments

// Blend weights the CCS and NDF share of a currency's hedge book.
type Blend struct {
	CCS float64
	NDF float64
}

// Position is the pair of trades written against one currency at the
// sampled origin.
type Position struct {
	CCS CCS
	NDF NDF
}

// NewPosition opens both legs at tradeSpot for the same notional and tenor.
func NewPosition(notionalUSD, tradeSpot, fixedUSD, fixedLCY, tenorYears float64) Position {
	return Position{
		CCS: CCS{
			NotionalUSD:  notionalUSD,
			TradeSpot:    tradeSpot,
			FixedUSDRate: fixedUSD,
			FixedLCYRate: fixedLCY,
			TenorYears:   tenorYears,
		},
		NDF: NDF{
			NotionalUSD: notionalUSD,
			Strike:      tradeSpot,
			TenorYears:  tenorYears,
		},
	}
}

// MTM is the blend-weighted lender MTM of both legs.
func (p Position) MTM(b Blend, spotNow, tYears, usdRate, lcyRate float64) float64 {
	return b.CCS*p.CCS.MTM(spotNow, tYears, usdRate, lcyRate) +
		b.NDF*p.NDF.MTM(spotNow, tYears, usdRate, lcyRate)
}
