package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/vehicle"
)

func TestUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.4, "999"},
		{1000, "1,000"},
		{1234567.5, "1,234,568"},
		{-98765.4, "-98,765"},
		{100_000_000, "100,000,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usd(tt.in), "usd(%v)", tt.in)
	}
}

func TestRoeAt(t *testing.T) {
	t.Parallel()

	c := vehicle.ROECurve{Leverage: []float64{5, 10}, ROE: []float64{0.1, 0.2}}
	assert.Equal(t, "20.00%", roeAt(c, 10))
	assert.Equal(t, "n/a", roeAt(c, 30))
}

func runResults(t *testing.T, phase int) *vehicle.Results {
	t.Helper()
	cfg := config.Default()
	cfg.Run.Phase = phase
	cfg.Run.Trials = 200
	h, err := vehicle.SyntheticHistory(cfg.Universe.Currencies, 96, 3)
	require.NoError(t, err)

	res, err := (&vehicle.Runner{Config: cfg, History: h}).Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestRenderMonteCarlo(t *testing.T) {
	t.Parallel()

	res := runResults(t, 2)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res))
	out := buf.String()

	for _, section := range []string{
		"# Guarantee Vehicle Report",
		"## Input Summary",
		"## Currency MTM+ Statistics",
		"## EL and Net Margin by PD Scenario",
		"## Capital and Leverage",
		"## Monte Carlo Losses",
		"## Capital Stack Returns",
		"## Leverage vs ROE",
		"## Acceptance Checks",
	} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "- Portfolio notional USD: 100,000,000")
	assert.Contains(t, out, "- Trials: 200 of 200\n")
	assert.Contains(t, out, "## Default Timing at Stress PD")
	assert.Contains(t, out, "| 1 | 5.00% |\n| 2 | 9.75% |\n| 3 | 14.26% |\n")
	assert.Contains(t, out, "- Simulated default share of draws: ")
	assert.Contains(t, out, "(analytic 14.26%)")
	assert.Contains(t, out, "| First loss equity | equity | 0.00% | 5.00% | 5,000,000 |")
	assert.Contains(t, out, "- Guarantor return on guaranteed amount: 1.50%")
	assert.Contains(t, out, "- [PASS] EL monotonic with PD")
	assert.NotContains(t, out, "<no value>")
	assert.NotContains(t, out, "## Warnings")
}

func TestRenderAnalyticSkipsMonteCarlo(t *testing.T) {
	t.Parallel()

	res := runResults(t, 1)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res))

	assert.NotContains(t, buf.String(), "## Monte Carlo Losses")
	assert.Contains(t, buf.String(), "- Expected loss source: analytic")
}

func TestRenderWarnings(t *testing.T) {
	t.Parallel()

	res := runResults(t, 1)
	res.Warnings = append(res.Warnings, "something to look at")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res))

	out := buf.String()
	i := strings.Index(out, "## Warnings")
	require.GreaterOrEqual(t, i, 0)
	assert.Contains(t, out[i:], "- something to look at")
}
