package capital

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveLeverage rejects a leverage request <= 0.
	ErrNonPositiveLeverage = errors.New("capital: leverage must be > 0")
	// ErrNoEquity rejects a stack without a positive-width equity layer.
	ErrNoEquity = errors.New("capital: stack must include a positive-width equity layer")
)

// InfeasibleStackError reports tranche widths that consume the whole
// notional.
type InfeasibleStackError struct {
	Leverage float64
	TotalPct float64
}

func (e *InfeasibleStackError) Error() string {
	return fmt.Sprintf("capital: leverage %.2fx implies capital stack %.2f%% of notional; reduce leverage",
		e.Leverage, 100*e.TotalPct)
}

// Economics are the annual running rates of the facility, in basis points
// of notional.
type Economics struct {
	ClientFeeBps    float64
	OpexBps         float64
	NDFCostAddonBps float64
	ReserveBuildBps float64
}

func bps(x float64) float64 { return x / 10000.0 }

// Sizing decides how wide the tranches are. LeverageSizing and
// NotionalSizing are the only implementations.
type Sizing interface {
	// scale multiplies every configured layer width.
	scale(equityBase float64) (float64, error)
	String() string
}

// LeverageSizing sets equity to 1/Leverage of notional and scales mezz and
// counter-guarantee in proportion to the configured stack.
type LeverageSizing struct {
	Leverage float64
}

func (s LeverageSizing) scale(equityBase float64) (float64, error) {
	if !(s.Leverage > 0) {
		return 0, fmt.Errorf("%w: got %v", ErrNonPositiveLeverage, s.Leverage)
	}
	return (1.0 / s.Leverage) / equityBase, nil
}

func (s LeverageSizing) String() string { return fmt.Sprintf("leverage %.2fx", s.Leverage) }

// NotionalSizing takes the configured attach/detach widths as they are.
type NotionalSizing struct{}

func (NotionalSizing) scale(float64) (float64, error) { return 1, nil }

func (NotionalSizing) String() string { return "configured stack" }

// Waterfall holds the annual amounts for a notional, in USD.
type Waterfall struct {
	GrossPremium           float64 `json:"gross_premium"`
	Opex                   float64 `json:"opex"`
	NDFAddon               float64 `json:"ndf_addon"`
	Reserve                float64 `json:"reserve"`
	ExpectedLoss           float64 `json:"expected_loss"`
	MezzCoupon             float64 `json:"mezz_coupon_amount"`
	CounterGuaranteeFee    float64 `json:"counter_guarantee_fee_amount"`
	EquityResidual         float64 `json:"equity_residual"`
	EquityAmount           float64 `json:"equity_amount"`
	MezzAmount             float64 `json:"mezz_amount"`
	CounterGuaranteeAmount float64 `json:"counter_guarantee_amount"`
}

// FixedCosts is everything paid ahead of equity.
func (w Waterfall) FixedCosts() float64 {
	return w.Opex + w.NDFAddon + w.Reserve + w.ExpectedLoss + w.MezzCoupon + w.CounterGuaranteeFee
}

// Snapshot is a recomputed-on-demand view of the stack returns. Rates are
// fractions of notional per year.
type Snapshot struct {
	Sizing   string  `json:"sizing"`
	Notional float64 `json:"notional"`
	Leverage float64 `json:"leverage"`

	EquityPct           float64 `json:"equity_pct"`
	MezzPct             float64 `json:"mezz_pct"`
	CounterGuaranteePct float64 `json:"counter_guarantee_pct"`

	GrossFeeRate            float64 `json:"gross_fee_rate"`
	OpexRate                float64 `json:"opex_rate"`
	CostAddonRate           float64 `json:"cost_addon_rate"`
	ExpectedLossRate        float64 `json:"expected_loss_rate"`
	MezzCouponRate          float64 `json:"mezz_coupon_rate"`
	CounterGuaranteeFeeRate float64 `json:"counter_guarantee_fee_rate"`
	EquityResidualRate      float64 `json:"equity_residual_rate"`

	EquityROE                         float64 `json:"equity_roe"`
	MezzReturn                        float64 `json:"mezz_return"`
	GuarantorReturnOnGuaranteedAmount float64 `json:"guarantor_return_on_guaranteed_amount"`
	GuarantorROE                      float64 `json:"guarantor_roe"`

	Amounts  Waterfall `json:"amounts"`
	Warnings []string  `json:"warnings,omitempty"`
}

// TotalCapitalPct is the share of notional funded by the stack.
func (s Snapshot) TotalCapitalPct() float64 {
	return s.EquityPct + s.MezzPct + s.CounterGuaranteePct
}

// Returns allocates the stack under the given sizing and runs the fee, cost
// and loss waterfall. expectedLossRate is a fraction of notional per year.
func Returns(stack Stack, econ Economics, sizing Sizing, notional, expectedLossRate float64) (Snapshot, error) {
	if sizing == nil {
		sizing = NotionalSizing{}
	}

	equityBase := 0.0
	for _, l := range stack {
		if l.Kind() == Equity {
			equityBase += l.Width()
		}
	}
	if equityBase <= 0 {
		return Snapshot{}, ErrNoEquity
	}

	scale, err := sizing.scale(equityBase)
	if err != nil {
		return Snapshot{}, err
	}

	var (
		equityPct, mezzPct, cgPct float64
		mezzCouponRate, cgFeeRate float64
		coupons, fees             []float64
		capFactor                 float64
	)
	for _, l := range stack {
		w := l.Width() * scale
		switch t := l.Terms.(type) {
		case EquityTerms:
			equityPct += w
		case MezzTerms:
			mezzPct += w
			mezzCouponRate += t.CouponPct * w
			coupons = append(coupons, t.CouponPct)
		case CounterGuaranteeTerms:
			cgPct += w
			cgFeeRate += bps(t.FeeBps) * w
			fees = append(fees, bps(t.FeeBps))
			if t.CapitalFactor > 0 {
				capFactor = t.CapitalFactor
			}
		}
	}

	leverage := 1.0 / equityPct
	if ls, ok := sizing.(LeverageSizing); ok {
		leverage = ls.Leverage
	}

	total := equityPct + mezzPct + cgPct
	if total >= 1.0 {
		return Snapshot{}, &InfeasibleStackError{Leverage: leverage, TotalPct: total}
	}

	s := Snapshot{
		Sizing:              sizing.String(),
		Notional:            notional,
		Leverage:            leverage,
		EquityPct:           equityPct,
		MezzPct:             mezzPct,
		CounterGuaranteePct: cgPct,

		GrossFeeRate:            bps(econ.ClientFeeBps),
		OpexRate:                bps(econ.OpexBps),
		CostAddonRate:           bps(econ.NDFCostAddonBps + econ.ReserveBuildBps),
		ExpectedLossRate:        expectedLossRate,
		MezzCouponRate:          mezzCouponRate,
		CounterGuaranteeFeeRate: cgFeeRate,
	}

	s.EquityResidualRate = s.GrossFeeRate - s.OpexRate - s.CostAddonRate - s.ExpectedLossRate -
		s.MezzCouponRate - s.CounterGuaranteeFeeRate
	s.EquityROE = s.EquityResidualRate / equityPct

	if mezzPct > 0 {
		s.MezzReturn = commonOrWeighted(coupons, mezzCouponRate, mezzPct)
	}
	if cgPct > 0 {
		s.GuarantorReturnOnGuaranteedAmount = commonOrWeighted(fees, cgFeeRate, cgPct)
		if capFactor > 0 {
			s.GuarantorROE = s.GuarantorReturnOnGuaranteedAmount / capFactor
		} else {
			s.Warnings = append(s.Warnings, "counter-guarantee has no guarantor_capital_factor; guarantor ROE reported as 0")
		}
	}

	s.Amounts = Waterfall{
		GrossPremium:           s.GrossFeeRate * notional,
		Opex:                   s.OpexRate * notional,
		NDFAddon:               bps(econ.NDFCostAddonBps) * notional,
		Reserve:                bps(econ.ReserveBuildBps) * notional,
		ExpectedLoss:           expectedLossRate * notional,
		MezzCoupon:             mezzCouponRate * notional,
		CounterGuaranteeFee:    cgFeeRate * notional,
		EquityResidual:         s.EquityResidualRate * notional,
		EquityAmount:           equityPct * notional,
		MezzAmount:             mezzPct * notional,
		CounterGuaranteeAmount: cgPct * notional,
	}
	return s, nil
}

// commonOrWeighted returns the shared value when every layer carries the
// same rate, else the width-weighted average.
func commonOrWeighted(values []float64, weightedSum, totalWidth float64) float64 {
	for _, v := range values[1:] {
		if v != values[0] {
			return weightedSum / totalWidth
		}
	}
	return values[0]
}

// LeverageSweep computes a snapshot for each leverage in order. Leverages
// that make the stack infeasible are skipped; any other error is returned.
func LeverageSweep(stack Stack, econ Economics, notional, expectedLossRate float64, leverages []float64) ([]Snapshot, error) {
	out := make([]Snapshot, 0, len(leverages))
	for _, lev := range leverages {
		s, err := Returns(stack, econ, LeverageSizing{Leverage: lev}, notional, expectedLossRate)
		if err != nil {
			var inf *InfeasibleStackError
			if errors.As(err, &inf) {
				continue
			}
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// BreakEvenFeeBps is the client fee that delivers targetROE on the equity
// amount after fixed costs.
func BreakEvenFeeBps(targetROE, equityAmount, fixedCosts, notional float64) float64 {
	if notional <= 0 {
		return 0
	}
	required := targetROE*equityAmount + fixedCosts
	return required / notional * 10000.0
}
