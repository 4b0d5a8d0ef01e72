// Package vehicle runs the full sizing and pricing pipeline for a configured
// guarantee vehicle.
package vehicle

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/guarantee/capital"
	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/credit"
	"github.com/rustyeddy/guarantee/guarantee"
	"github.com/rustyeddy/guarantee/instruments"
	"github.com/rustyeddy/guarantee/market"
	"github.com/rustyeddy/guarantee/pkg/id"
	"github.com/rustyeddy/guarantee/sim"
	"github.com/rustyeddy/guarantee/stats"
)

// MonteCarloPhase is the first run.phase that simulates losses.
const MonteCarloPhase = 2

// Leverage axis of the all-equity ROE curves.
const (
	curveMinLeverage = 5
	curveMaxLeverage = 30
)

// Exceedance thresholds as fractions of notional.
var exceedanceGrid = []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05}

// Runner drives one run. Config must already be validated or Run will
// validate it.
type Runner struct {
	Config  *config.Config
	History market.History
	Logger  *zap.Logger
	Metrics *sim.Metrics

	// Workers overrides run.workers when positive.
	Workers int
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run executes every phase allowed by run.phase. A cancelled Monte Carlo
// phase still produces results, flagged through Results.Incomplete.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	cfg := r.Config
	if cfg == nil {
		return nil, fmt.Errorf("vehicle: Config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("vehicle: %w", err)
	}
	log := r.log()

	res := &Results{
		RunID:      id.New(),
		CreatedAt:  time.Now().UTC(),
		Config:     cfg,
		TargetROE:  cfg.CapitalTarget.TargetROE,
		TailMethod: capital.Method(cfg.CapitalTarget.Method),
	}
	log = log.With(zap.String("run_id", res.RunID))

	ccys := cfg.Universe.Currencies
	if err := market.ValidateHistory(r.History, ccys, cfg.Data.Rates.Mapping, cfg.Data.Rates.Enabled); err != nil {
		return nil, err
	}
	res.Checks = append(res.Checks, Check{Name: "FX series loaded for all configured currencies", Passed: true})
	if cfg.Data.Rates.Enabled {
		res.Checks = append(res.Checks, Check{Name: "Rate mappings resolved for all configured currencies", Passed: true})
	}

	weights := cfg.Weights()
	limit := cfg.CapitalTarget.ConcentrationLimits.MaxCurrencyWeight
	for _, c := range ccys {
		if limit > 0 && weights[c] > limit {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s weight %.2f%% exceeds max_currency_weight %.2f%%", c, 100*weights[c], 100*limit))
		}
	}

	// Empirical exposure.
	tenorMonths := cfg.Portfolio.TenorYears * 12
	samplesByCcy := make(map[string][]float64, len(ccys))
	for _, c := range ccys {
		s := r.History.FX[c]
		samples := market.PositiveExposureSamples(s, tenorMonths)
		samplesByCcy[c] = samples
		res.Currencies = append(res.Currencies, CurrencyStats{
			Currency:        c,
			Observations:    s.Len(),
			Weight:          weights[c],
			ExposureSummary: market.Summarize(samples),
		})
	}
	portfolio := capital.WeightedPortfolioSamples(samplesByCcy, weights)
	res.PortfolioMean = stats.Mean(portfolio)
	log.Debug("exposure sampled", zap.Int("portfolio_samples", len(portfolio)), zap.Float64("mean", res.PortfolioMean))

	// Expected loss by PD scenario.
	econ := cfg.Economics
	elBps := make([]float64, 0, len(cfg.Credit.PDScenariosAnnual))
	for _, pd := range cfg.Credit.PDScenariosAnnual {
		el := pd * res.PortfolioMean * 10000
		elBps = append(elBps, el)
		res.Scenarios = append(res.Scenarios, Scenario{
			PD:           pd,
			ELBps:        el,
			NetMarginBps: econ.ClientFeeBpsPA - econ.OpexBpsPA - econ.NDFCostAddonBpsPA - econ.ReserveBuildBpsPA - el,
		})
	}
	res.Checks = append(res.Checks, Check{Name: "EL monotonic with PD", Passed: stats.NonDecreasing(elBps, 0)})

	for _, t := range instruments.MonthlySchedule(cfg.Portfolio.TenorYears) {
		p, err := credit.DefaultProbability(cfg.StressPD(), t)
		if err != nil {
			return nil, fmt.Errorf("vehicle: default curve: %w", err)
		}
		res.DefaultCurve = append(res.DefaultCurve, DefaultPoint{Years: t, Probability: p})
	}

	// Severity capital on the exposure distribution.
	res.SeverityCapital = capital.SeverityCapital(portfolio, cfg.CapitalTarget.SeverityQuantile, cfg.CapitalTarget.AddonPct)
	res.ImpliedLeverage = capital.ImpliedLeverage(res.SeverityCapital)
	if res.ImpliedLeverage == 0 {
		res.Warnings = append(res.Warnings, "severity capital is zero; implied leverage undefined")
	}

	notional := cfg.Portfolio.NotionalUSDTotal
	if cfg.Run.Phase >= MonteCarloPhase {
		dist, err := r.simulate(ctx, log, weights)
		if err != nil {
			return nil, err
		}
		res.Losses = &dist
		if dist.Len() > 0 {
			res.TailLoss = capital.VaROrES(dist.Losses, cfg.CapitalTarget.Confidence, res.TailMethod)
			res.ExpectedLoss = dist.Mean()
			res.ExpectedLossSource = "monte carlo"
		}
		thresholds := make([]float64, len(exceedanceGrid))
		for i, g := range exceedanceGrid {
			thresholds[i] = g * notional
		}
		res.Exceedance = dist.Exceedance(thresholds)
		if dist.Incomplete {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("monte carlo cancelled after %d of %d trials; loss statistics are partial", dist.Len(), dist.Requested))
		}
	}
	if res.ExpectedLossSource == "" {
		res.ExpectedLoss = res.PortfolioMean * cfg.StressPD() * notional
		res.ExpectedLossSource = "analytic"
	}

	// Returns on the configured stack.
	stack, err := cfg.Stack()
	if err != nil {
		return nil, err
	}
	capEcon := cfg.CapitalEconomics()
	elRate := res.ExpectedLoss / notional
	snap, err := capital.Returns(stack, capEcon, capital.NotionalSizing{}, notional, elRate)
	if err != nil {
		return nil, fmt.Errorf("vehicle: stack returns: %w", err)
	}
	res.Returns = snap
	res.Warnings = append(res.Warnings, snap.Warnings...)
	for _, w := range snap.Warnings {
		log.Warn("stack returns", zap.String("warning", w))
	}
	res.Tranches = capital.StackAmounts(stack, notional)
	res.BreakEvenFeeBps = capital.BreakEvenFeeBps(res.TargetROE, snap.Amounts.EquityAmount, snap.Amounts.FixedCosts(), notional)

	// ROE against leverage.
	axis := leverageAxis()
	for _, pd := range cfg.Credit.PDScenariosAnnual {
		res.Curves = append(res.Curves, allEquityCurve(pd, res.PortfolioMean, econ, axis))
	}
	sweep, err := capital.LeverageSweep(stack, capEcon, notional, elRate, axis)
	if err != nil {
		return nil, fmt.Errorf("vehicle: leverage sweep: %w", err)
	}
	stackCurve := ROECurve{Label: "Equity ROE after stack costs"}
	for _, s := range sweep {
		stackCurve.Leverage = append(stackCurve.Leverage, s.Leverage)
		stackCurve.ROE = append(stackCurve.ROE, s.EquityROE)
	}
	res.Curves = append(res.Curves, stackCurve)

	ref := res.Curves[0]
	if len(cfg.Credit.PDScenariosAnnual) > 1 {
		ref = res.Curves[1]
	}
	res.Checks = append(res.Checks, Check{Name: "ROE monotonic with leverage", Passed: stats.NonDecreasing(ref.ROE, 1e-12)})

	if fee, ok := counterGuaranteeFee(stack); ok && snap.CounterGuaranteePct > 0 {
		res.Checks = append(res.Checks, Check{
			Name:   "Counter-guarantee return matches configured fee",
			Passed: snap.GuarantorReturnOnGuaranteedAmount == fee/10000.0,
		})
	}

	log.Info("run complete",
		zap.Int("phase", cfg.Run.Phase),
		zap.Float64("expected_loss", res.ExpectedLoss),
		zap.String("expected_loss_source", res.ExpectedLossSource),
		zap.Float64("severity_capital", res.SeverityCapital),
		zap.Float64("equity_roe", snap.EquityROE),
		zap.Bool("checks_passed", res.AllChecksPassed()))
	return res, nil
}

func (r *Runner) simulate(ctx context.Context, log *zap.Logger, weights map[string]float64) (sim.LossDistribution, error) {
	cfg := r.Config
	lcyRates, err := r.lcyOverrides()
	if err != nil {
		return sim.LossDistribution{}, err
	}

	in := sim.Inputs{
		Currencies:  cfg.Universe.Currencies,
		History:     r.History.FX,
		Weights:     weights,
		NotionalUSD: cfg.Portfolio.NotionalUSDTotal,
		TenorYears:  float64(cfg.Portfolio.TenorYears),
		StressPD:    cfg.StressPD(),
		Guarantee: guarantee.Terms{
			CoveragePct: cfg.Guarantee.CoveragePct,
			AttachPct:   cfg.Guarantee.AttachmentPctNotional,
			DetachPct:   cfg.Guarantee.DetachmentPctNotional,
		},
		Blend:        instruments.Blend{CCS: cfg.Portfolio.Mix.CCS, NDF: cfg.Portfolio.Mix.NDF},
		USDRate:      cfg.Curves.USDRate,
		LCYRate:      cfg.Curves.LCYRate,
		LCYRates:     lcyRates,
		FixedUSDRate: cfg.Curves.CCSFixedUSDRate,
		FixedLCYRate: cfg.Curves.CCSFixedLCYRate,
	}

	eng := sim.NewEngine(cfg.Run.Trials, cfg.Run.Seed)
	if cfg.Run.Workers > 0 {
		eng.Workers = cfg.Run.Workers
	}
	if r.Workers > 0 {
		eng.Workers = r.Workers
	}
	if cfg.Run.BatchSize > 0 {
		eng.BatchSize = cfg.Run.BatchSize
	}
	eng.Logger = log.Named("sim")
	eng.Metrics = r.Metrics

	dist, err := eng.Run(ctx, in)
	if err != nil {
		return sim.LossDistribution{}, fmt.Errorf("vehicle: monte carlo: %w", err)
	}
	return dist, nil
}

// lcyOverrides takes the latest short rate of each mapped currency.
func (r *Runner) lcyOverrides() (map[string]float64, error) {
	cfg := r.Config
	if !cfg.Data.Rates.Enabled {
		return nil, nil
	}
	out := make(map[string]float64, len(cfg.Data.Rates.Mapping))
	for ccy := range cfg.Data.Rates.Mapping {
		v, ok := r.History.Rates[ccy].Last()
		if !ok {
			return nil, fmt.Errorf("vehicle: rate series for %s is empty", ccy)
		}
		if cfg.Data.Rates.InPercent {
			v /= 100
		}
		out[ccy] = v
	}
	return out, nil
}

func leverageAxis() []float64 {
	axis := make([]float64, 0, curveMaxLeverage-curveMinLeverage+1)
	for l := curveMinLeverage; l <= curveMaxLeverage; l++ {
		axis = append(axis, float64(l))
	}
	return axis
}

// allEquityCurve is ROE = L * (fee - opex - EL) for an unlevered-by-debt
// vehicle.
func allEquityCurve(pd, portfolioMean float64, econ config.EconomicsConfig, axis []float64) ROECurve {
	margin := (econ.ClientFeeBpsPA - econ.OpexBpsPA - pd*portfolioMean*10000) / 10000
	c := ROECurve{
		Label:    fmt.Sprintf("All-equity PD %s%%", trimPct(pd)),
		Leverage: axis,
		ROE:      make([]float64, len(axis)),
	}
	for i, l := range axis {
		c.ROE[i] = l * margin
	}
	return c
}

func trimPct(pd float64) string {
	v := pd * 100
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", math.Round(v*100)/100)
}

func counterGuaranteeFee(stack capital.Stack) (float64, bool) {
	for _, l := range stack {
		if t, ok := l.Terms.(capital.CounterGuaranteeTerms); ok {
			return t.FeeBps, true
		}
	}
	return 0, false
}
