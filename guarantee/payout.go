// Package guarantee turns a lender's MTM shortfall at default into the
// guarantee payout for one attach/detach tranche.
package guarantee

import "math"

// Terms are the contract parameters of a default-only guarantee.
type Terms struct {
	CoveragePct float64
	AttachPct   float64
	DetachPct   float64
}

// ApplyLayer is the excess-of-loss transform for the slice
// [attach*notional, detach*notional].
func ApplyLayer(loss, attachPct, detachPct, notional float64) float64 {
	lo := attachPct * notional
	hi := detachPct * notional
	return math.Max(math.Min(loss, hi)-lo, 0)
}

// Payout covers coverage% of a positive lender MTM and tranches it. A
// favourable MTM (<= 0) pays nothing.
func Payout(mtmLender float64, terms Terms, notional float64) float64 {
	raw := terms.CoveragePct * math.Max(mtmLender, 0)
	return ApplyLayer(raw, terms.AttachPct, terms.DetachPct, notional)
}
