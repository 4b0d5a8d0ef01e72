package journal

import (
	"bytes"
	"fmt"
	"text/template"
)

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"cents":  func(x float64) string { return Cents(x).StringFixed(2) },
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run as an Org heading with a properties drawer,
// for pasting into a research log.
func FormatRunOrg(r RunRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrg.Execute(buf, r); err != nil {
		return "", fmt.Errorf("format run %s: %w", r.RunID, err)
	}
	return buf.String(), nil
}

const RunOrgTemplate = `* RUN: {{.Currencies}} phase {{.Phase}}{{if .Incomplete}} (INCOMPLETE){{end}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:CREATED:     [{{.CreatedAt.Format "2006-01-02 Mon 15:04"}}]
:SEED:        {{.Seed}}
:TRIALS:      {{.Completed}}/{{.Trials}}
:NOTIONAL:    {{cents .Notional}}
:STRESS_PD:   {{printf "%.2f" (mul100 .StressPD)}}%
:END:

** Risk
| Measure                        | Value |
|--------------------------------+-------|
| Expected loss (USD)            | {{cents .ExpectedLoss}} |
| {{.TailMethod}} @ {{printf "%.1f" (mul100 .Confidence)}}% (USD) | {{cents .TailLoss}} |
| Severity capital (% notional)  | {{printf "%.2f" (mul100 .SeverityCapital)}} |
| Implied leverage               | {{printf "%.2f" .ImpliedLeverage}}x |

** Returns
- Equity ROE:      *{{printf "%.2f" (mul100 .EquityROE)}}%*
- Break-even fee:  *{{printf "%.1f" .BreakEvenFeeBps}} bps*
`
