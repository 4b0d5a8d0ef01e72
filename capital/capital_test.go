package capital

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStack() Stack {
	return Stack{
		{Name: "First loss equity", AttachPct: 0, DetachPct: 0.05, Terms: EquityTerms{}},
		{Name: "Mezzanine", AttachPct: 0.05, DetachPct: 0.08, Terms: MezzTerms{CouponPct: 0.09}},
		{Name: "Counter-guarantee", AttachPct: 0.08, DetachPct: 0.15, Terms: CounterGuaranteeTerms{FeeBps: 150, CapitalFactor: 0.2}},
	}
}

func testEconomics() Economics {
	return Economics{ClientFeeBps: 250, OpexBps: 30, NDFCostAddonBps: 10, ReserveBuildBps: 5}
}

func TestSeverityCapital(t *testing.T) {
	t.Parallel()

	samples := []float64{0, 0.1, 0.2, 0.3, 0.4}
	assert.InDelta(t, 0.4*1.1, SeverityCapital(samples, 1, 0.1), 1e-12)
	assert.InDelta(t, 0.2, SeverityCapital(samples, 0.5, 0), 1e-12)
}

func TestVaROrES(t *testing.T) {
	t.Parallel()

	losses := make([]float64, 100)
	for i := range losses {
		losses[i] = float64(i)
	}

	v := VaROrES(losses, 0.95, VaR)
	es := VaROrES(losses, 0.95, ES)

	assert.InDelta(t, 94.05, v, 1e-9)
	assert.InDelta(t, (95+96+97+98+99)/5.0, es, 1e-9)
	assert.GreaterOrEqual(t, es, v)
}

func TestESNotBelowVaR(t *testing.T) {
	t.Parallel()

	samples := [][]float64{
		{0, 0, 0, 0, 10},
		{1, 1, 1, 1},
		{5, 3, 8, 1, 9, 2, 2, 7},
		{0},
	}
	for _, conf := range []float64{0.5, 0.9, 0.99, 0.995} {
		for _, s := range samples {
			assert.GreaterOrEqual(t, VaROrES(s, conf, ES), VaROrES(s, conf, VaR))
		}
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod("ES")
	require.NoError(t, err)
	assert.Equal(t, ES, m)

	_, err = ParseMethod("CVaR")
	assert.Error(t, err)
}

func TestImpliedLeverage(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 20.0, ImpliedLeverage(0.05), 1e-12)
	assert.Equal(t, 0.0, ImpliedLeverage(0))
	assert.Equal(t, 0.0, ImpliedLeverage(-0.1))
}

func TestWeightedPortfolioSamples(t *testing.T) {
	t.Parallel()

	got := WeightedPortfolioSamples(
		map[string][]float64{
			"KES": {0.1, 0.2, 0.3},
			"NGN": {1, 2},
		},
		map[string]float64{"KES": 0.5, "NGN": 0.5},
	)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.55, got[0], 1e-12)
	assert.InDelta(t, 1.1, got[1], 1e-12)
	assert.Nil(t, WeightedPortfolioSamples(nil, nil))
}

func TestReturnsNotionalSizing(t *testing.T) {
	t.Parallel()

	s, err := Returns(testStack(), testEconomics(), NotionalSizing{}, 100_000_000, 0.003)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, s.EquityPct, 1e-12)
	assert.InDelta(t, 0.03, s.MezzPct, 1e-12)
	assert.InDelta(t, 0.07, s.CounterGuaranteePct, 1e-12)
	assert.InDelta(t, 20.0, s.Leverage, 1e-9)

	residual := 0.025 - 0.003 - 0.0015 - 0.003 - 0.09*0.03 - 0.015*0.07
	assert.InDelta(t, residual, s.EquityResidualRate, 1e-12)
	assert.InDelta(t, residual/0.05, s.EquityROE, 1e-12)
	assert.InDelta(t, 0.09, s.MezzReturn, 1e-12)
	assert.InDelta(t, 0.015/0.2, s.GuarantorROE, 1e-12)
	assert.Empty(t, s.Warnings)

	assert.InDelta(t, 2_500_000, s.Amounts.GrossPremium, 1e-6)
	assert.InDelta(t, 5_000_000, s.Amounts.EquityAmount, 1e-6)
	assert.InDelta(t, residual*100_000_000, s.Amounts.EquityResidual, 1e-6)
	assert.InDelta(t, s.Amounts.GrossPremium-s.Amounts.FixedCosts(), s.Amounts.EquityResidual, 1e-6)
}

func TestGuarantorFeeIdentity(t *testing.T) {
	t.Parallel()

	for _, fee := range []float64{1, 7, 33, 150, 275.5} {
		st := testStack()
		st[2].Terms = CounterGuaranteeTerms{FeeBps: fee, CapitalFactor: 0.25}

		for _, sizing := range []Sizing{NotionalSizing{}, LeverageSizing{Leverage: 12}} {
			s, err := Returns(st, testEconomics(), sizing, 1e8, 0.002)
			require.NoError(t, err)
			require.Greater(t, s.CounterGuaranteePct, 0.0)
			assert.Equal(t, fee/10000.0, s.GuarantorReturnOnGuaranteedAmount)
		}
	}
}

func TestGuarantorCapitalFactorUnset(t *testing.T) {
	t.Parallel()

	st := testStack()
	st[2].Terms = CounterGuaranteeTerms{FeeBps: 150}

	s, err := Returns(st, testEconomics(), NotionalSizing{}, 1e8, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.GuarantorROE)
	assert.InDelta(t, 0.015, s.GuarantorReturnOnGuaranteedAmount, 1e-15)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "guarantor_capital_factor")
}

func TestReturnsLeverageSizing(t *testing.T) {
	t.Parallel()

	s, err := Returns(testStack(), testEconomics(), LeverageSizing{Leverage: 10}, 1e8, 0.003)
	require.NoError(t, err)

	assert.InDelta(t, 0.10, s.EquityPct, 1e-12)
	assert.InDelta(t, 0.06, s.MezzPct, 1e-12)
	assert.InDelta(t, 0.14, s.CounterGuaranteePct, 1e-12)
	assert.Equal(t, 10.0, s.Leverage)
	assert.Equal(t, "leverage 10.00x", s.Sizing)
}

func TestReturnsErrors(t *testing.T) {
	t.Parallel()

	_, err := Returns(testStack(), testEconomics(), LeverageSizing{Leverage: 0}, 1e8, 0)
	assert.ErrorIs(t, err, ErrNonPositiveLeverage)

	_, err = Returns(testStack(), testEconomics(), LeverageSizing{Leverage: -3}, 1e8, 0)
	assert.ErrorIs(t, err, ErrNonPositiveLeverage)

	_, err = Returns(testStack()[1:], testEconomics(), NotionalSizing{}, 1e8, 0)
	assert.ErrorIs(t, err, ErrNoEquity)

	// equity 1/2 + mezz 0.3 + cg 0.7 >= 100%
	_, err = Returns(testStack(), testEconomics(), LeverageSizing{Leverage: 2}, 1e8, 0)
	var inf *InfeasibleStackError
	require.True(t, errors.As(err, &inf))
	assert.Equal(t, 2.0, inf.Leverage)
	assert.InDelta(t, 1.5, inf.TotalPct, 1e-12)
	assert.Contains(t, err.Error(), "2.00x")

	full := Stack{
		{Name: "eq", AttachPct: 0, DetachPct: 0.5, Terms: EquityTerms{}},
		{Name: "cg", AttachPct: 0.5, DetachPct: 1, Terms: CounterGuaranteeTerms{FeeBps: 10}},
	}
	_, err = Returns(full, testEconomics(), NotionalSizing{}, 1e8, 0)
	assert.True(t, errors.As(err, &inf))
}

func TestROENonDecreasingInLeverage(t *testing.T) {
	t.Parallel()

	levs := make([]float64, 0, 40)
	for l := 1.0; l <= 40; l++ {
		levs = append(levs, l)
	}

	snaps, err := LeverageSweep(testStack(), testEconomics(), 1e8, 0.003, levs)
	require.NoError(t, err)

	// stack is 15% of notional at 20x, so anything below 3x is infeasible
	require.GreaterOrEqual(t, len(snaps), 37)
	assert.GreaterOrEqual(t, snaps[0].Leverage, 3.0)

	for i := 1; i < len(snaps); i++ {
		assert.GreaterOrEqual(t, snaps[i].EquityROE, snaps[i-1].EquityROE-1e-12)
	}
}

func TestLeverageSweepSkipsInfeasible(t *testing.T) {
	t.Parallel()

	snaps, err := LeverageSweep(testStack(), testEconomics(), 1e8, 0.003, []float64{5, 2, 10, 1, 20})
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 5.0, snaps[0].Leverage)
	assert.Equal(t, 10.0, snaps[1].Leverage)
	assert.Equal(t, 20.0, snaps[2].Leverage)

	_, err = LeverageSweep(testStack(), testEconomics(), 1e8, 0.003, []float64{-1})
	assert.ErrorIs(t, err, ErrNonPositiveLeverage)
}

func TestStackAmountsPartition(t *testing.T) {
	t.Parallel()

	const notional = 123_456_789.0
	st := testStack()

	var sumAmounts, sumWidths float64
	for _, a := range StackAmounts(st, notional) {
		sumAmounts += a.Amount
	}
	for _, l := range st {
		sumWidths += l.Width()
	}
	assert.InDelta(t, sumWidths*notional, sumAmounts, 1e-9*notional)

	w := st.Widths()
	assert.InDelta(t, 0.05, w[Equity], 1e-12)
	assert.InDelta(t, 0.03, w[Mezz], 1e-12)
	assert.InDelta(t, 0.07, w[CounterGuarantee], 1e-12)
}

func TestLayerValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, testStack()[0].Validate())
	assert.Error(t, Layer{Name: "x", AttachPct: 0.1, DetachPct: 0.1, Terms: EquityTerms{}}.Validate())
	assert.Error(t, Layer{Name: "x", AttachPct: 0, DetachPct: 1.1, Terms: EquityTerms{}}.Validate())
	assert.Error(t, Layer{Name: "x", AttachPct: 0, DetachPct: 0.1}.Validate())
}

func TestBreakEvenFeeBps(t *testing.T) {
	t.Parallel()

	// 15% on 5m equity + 1m costs on 100m notional = 175 bps
	assert.InDelta(t, 175.0, BreakEvenFeeBps(0.15, 5_000_000, 1_000_000, 100_000_000), 1e-9)
	assert.Equal(t, 0.0, BreakEvenFeeBps(0.15, 1, 1, 0))
}
