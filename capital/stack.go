package capital

import "fmt"

// LayerKind tags a capital stack layer.
type LayerKind string

const (
	Equity           LayerKind = "equity"
	Mezz             LayerKind = "mezz"
	CounterGuarantee LayerKind = "counter_guarantee"
)

// LayerTerms carries the fields that only make sense for one layer kind.
type LayerTerms interface {
	Kind() LayerKind
}

// EquityTerms has no extra fields; equity takes the residual.
type EquityTerms struct{}

// MezzTerms pays a fixed coupon on the mezzanine width.
type MezzTerms struct {
	CouponPct float64
}

// CounterGuaranteeTerms pays a fee on the guaranteed amount. CapitalFactor
// is the guarantor's capital held per unit guaranteed; 0 means unset.
type CounterGuaranteeTerms struct {
	FeeBps        float64
	CapitalFactor float64
}

func (EquityTerms) Kind() LayerKind           { return Equity }
func (MezzTerms) Kind() LayerKind             { return Mezz }
func (CounterGuaranteeTerms) Kind() LayerKind { return CounterGuarantee }

// Layer is one tranche of the capital stack as a slice of notional.
type Layer struct {
	Name      string
	AttachPct float64
	DetachPct float64
	Terms     LayerTerms
}

// Width is detach - attach.
func (l Layer) Width() float64 {
	return l.DetachPct - l.AttachPct
}

// Kind returns the layer's tag.
func (l Layer) Kind() LayerKind {
	if l.Terms == nil {
		return ""
	}
	return l.Terms.Kind()
}

// Validate checks 0 <= attach < detach <= 1 and that the layer is tagged.
func (l Layer) Validate() error {
	if l.Terms == nil {
		return fmt.Errorf("layer %q: missing type", l.Name)
	}
	if !(l.AttachPct >= 0 && l.AttachPct < l.DetachPct && l.DetachPct <= 1) {
		return fmt.Errorf("layer %q: need 0 <= attach < detach <= 1, got [%v, %v]", l.Name, l.AttachPct, l.DetachPct)
	}
	return nil
}

// Stack is the ordered capital stack. By convention it tiles the funded
// part of notional; that is not enforced here.
type Stack []Layer

// Widths sums layer widths per kind.
func (s Stack) Widths() map[LayerKind]float64 {
	out := map[LayerKind]float64{}
	for _, l := range s {
		out[l.Kind()] += l.Width()
	}
	return out
}

// TrancheAmount is a layer's share of a given notional.
type TrancheAmount struct {
	Name   string
	Kind   LayerKind
	Attach float64
	Detach float64
	Amount float64
}

// StackAmounts converts each layer to a notional amount.
func StackAmounts(s Stack, notional float64) []TrancheAmount {
	out := make([]TrancheAmount, len(s))
	for i, l := range s {
		out[i] = TrancheAmount{
			Name:   l.Name,
			Kind:   l.Kind(),
			Attach: l.AttachPct,
			Detach: l.DetachPct,
			Amount: l.Width() * notional,
		}
	}
	return out
}
