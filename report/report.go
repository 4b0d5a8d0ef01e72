// Package report renders run results as Markdown.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/guarantee/vehicle"
)

var funcs = template.FuncMap{
	"usd":   usd,
	"pct":   func(x float64, places int32) string { return decimal.NewFromFloat(x*100).StringFixed(places) + "%" },
	"fixed": func(x float64, places int32) string { return decimal.NewFromFloat(x).StringFixed(places) },
	"addf":  func(a, b float64) float64 { return a + b },
	"join":  strings.Join,
	"mark": func(ok bool) string {
		if ok {
			return "PASS"
		}
		return "FAIL"
	},
	"roeAt": roeAt,
	"yearEnd": func(years float64) bool {
		return int(math.Round(years*12))%12 == 0
	},
}

var tmpl = template.Must(template.New("report").Funcs(funcs).Parse(Template))

// Render writes the Markdown report for res.
func Render(w io.Writer, res *vehicle.Results) error {
	if err := tmpl.Execute(w, res); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// usd formats a dollar amount rounded to whole dollars with thousands
// separators.
func usd(x float64) string {
	s := decimal.NewFromFloat(x).Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// roeAt picks the curve value at a given leverage, or "n/a" when the
// leverage is not on the curve.
func roeAt(c vehicle.ROECurve, leverage float64) string {
	for i, l := range c.Leverage {
		if l == leverage {
			return decimal.NewFromFloat(c.ROE[i] * 100).StringFixed(2) + "%"
		}
	}
	return "n/a"
}

const Template = `# Guarantee Vehicle Report

Run ` + "`{{.RunID}}`" + ` at {{.CreatedAt.Format "2006-01-02 15:04:05"}} UTC
{{- with .Config}}

## Input Summary
- Phase: {{.Run.Phase}}
- Seed: {{.Run.Seed}}
- Currencies: {{join .Universe.Currencies ", "}}
- Portfolio notional USD: {{usd .Portfolio.NotionalUSDTotal}}
- Tenor: {{.Portfolio.TenorYears}}y, mix CCS {{pct .Portfolio.Mix.CCS 0}} / NDF {{pct .Portfolio.Mix.NDF 0}}
- Guarantee: {{pct .Guarantee.CoveragePct 0}} cover of [{{pct .Guarantee.AttachmentPctNotional 2}}, {{pct .Guarantee.DetachmentPctNotional 2}}] of notional
{{- end}}

## Currency MTM+ Statistics
| Currency | Obs | Weight | P(MTM>0) | Mean | P90 | P99 | P99.5 |
|---|---:|---:|---:|---:|---:|---:|---:|
{{- range .Currencies}}
| {{.Currency}} | {{.Observations}} | {{pct .Weight 2}} | {{pct .PPositive 2}} | {{pct .Mean 4}} | {{pct .P90 4}} | {{pct .P99 4}} | {{pct .P995 4}} |
{{- end}}

Portfolio mean MTM+: {{pct .PortfolioMean 4}}

## EL and Net Margin by PD Scenario
| PD | EL (bps) | Net margin (bps) |
|---:|---:|---:|
{{- range .Scenarios}}
| {{pct .PD 2}} | {{fixed .ELBps 2}} | {{fixed .NetMarginBps 2}} |
{{- end}}

## Capital and Leverage
- Severity capital (% notional): {{pct .SeverityCapital 4}}
- Implied max leverage: {{if gt .ImpliedLeverage 0.0}}{{fixed .ImpliedLeverage 2}}x{{else}}undefined{{end}}

## Default Timing at Stress PD
| Year | Cumulative PD |
|---:|---:|
{{- range .DefaultCurve}}
{{- if yearEnd .Years}}
| {{fixed .Years 0}} | {{pct .Probability 2}} |
{{- end}}
{{- end}}
{{- if .Losses}}

## Monte Carlo Losses
- Trials: {{.Losses.Len}} of {{.Losses.Requested}}{{if .Losses.Incomplete}} (INCOMPLETE){{end}}
- Defaults / censored / degenerate draws: {{.Losses.Defaults}} / {{.Losses.Censored}} / {{.Losses.Degenerate}}
- Simulated default share of draws: {{pct .SimulatedDefaultRate 2}} (analytic {{pct .MaturityDefaultProbability 2}})
- Mean loss USD: {{usd .Losses.Mean}}
- {{.TailMethod}} at {{pct .Config.CapitalTarget.Confidence 1}} USD: {{usd .TailLoss}}

| Loss threshold USD | Exceedance probability |
|---:|---:|
{{- range .Exceedance}}
| {{usd .Threshold}} | {{pct .Probability 2}} |
{{- end}}
{{- end}}

## Capital Stack
| Layer | Type | Attach | Detach | Amount USD |
|---|---|---:|---:|---:|
{{- range .Tranches}}
| {{.Name}} | {{.Kind}} | {{pct .Attach 2}} | {{pct .Detach 2}} | {{usd .Amount}} |
{{- end}}

## Capital Stack Returns
{{- with .Returns}}
| Item | Rate | Amount USD |
|---|---:|---:|
| Gross fee | {{pct .GrossFeeRate 2}} | {{usd .Amounts.GrossPremium}} |
| Opex | {{pct .OpexRate 2}} | {{usd .Amounts.Opex}} |
| NDF addon + reserve | {{pct .CostAddonRate 2}} | {{usd (addf .Amounts.NDFAddon .Amounts.Reserve)}} |
| Expected loss | {{pct .ExpectedLossRate 4}} | {{usd .Amounts.ExpectedLoss}} |
| Mezz coupon | {{pct .MezzCouponRate 4}} | {{usd .Amounts.MezzCoupon}} |
| Counter-guarantee fee | {{pct .CounterGuaranteeFeeRate 4}} | {{usd .Amounts.CounterGuaranteeFee}} |
| Equity residual | {{pct .EquityResidualRate 4}} | {{usd .Amounts.EquityResidual}} |

- Stack leverage: {{fixed .Leverage 2}}x
- Equity ROE: {{pct .EquityROE 2}}
- Mezz return: {{pct .MezzReturn 2}}
- Guarantor return on guaranteed amount: {{pct .GuarantorReturnOnGuaranteedAmount 2}}
- Guarantor ROE: {{pct .GuarantorROE 2}}
{{- end}}
- Expected loss source: {{.ExpectedLossSource}}
- Break-even fee for {{pct .TargetROE 0}} target ROE: {{fixed .BreakEvenFeeBps 1}} bps

## Leverage vs ROE
| Curve | 5x | 10x | 15x | 20x | 25x | 30x |
|---|---:|---:|---:|---:|---:|---:|
{{- range .Curves}}
| {{.Label}} | {{roeAt . 5.0}} | {{roeAt . 10.0}} | {{roeAt . 15.0}} | {{roeAt . 20.0}} | {{roeAt . 25.0}} | {{roeAt . 30.0}} |
{{- end}}

## Acceptance Checks
{{- range .Checks}}
- [{{mark .Passed}}] {{.Name}}
{{- end}}
{{- if .Warnings}}

## Warnings
{{- range .Warnings}}
- {{.}}
{{- end}}
{{- end}}
`
