package sim

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/guarantee/guarantee"
	"github.com/rustyeddy/guarantee/instruments"
	"github.com/rustyeddy/guarantee/market"
)

func series(ccy string, rates ...float64) market.Series {
	start := time.Date(2015, 1, 31, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(rates))
	for i := range rates {
		dates[i] = start.AddDate(0, i, 0)
	}
	return market.Series{Currency: ccy, Dates: dates, Rates: rates}
}

// depreciating is a strictly rising LCY-per-USD path.
func depreciating(ccy string, n int) market.Series {
	rates := make([]float64, n)
	for i := range rates {
		rates[i] = 100 * (1 + 0.01*float64(i))
	}
	return series(ccy, rates...)
}

func newInputs(t *testing.T) Inputs {
	t.Helper()
	return Inputs{
		Currencies:   []string{"KES", "NGN"},
		History:      map[string]market.Series{"KES": depreciating("KES", 60), "NGN": depreciating("NGN", 48)},
		Weights:      map[string]float64{"KES": 0.5, "NGN": 0.5},
		NotionalUSD:  1_000_000,
		TenorYears:   3,
		StressPD:     0.3,
		Guarantee:    guarantee.Terms{CoveragePct: 1, AttachPct: 0, DetachPct: 1},
		Blend:        instruments.Blend{CCS: 0.7, NDF: 0.3},
		USDRate:      0.03,
		LCYRate:      0.03,
		FixedUSDRate: 0.03,
		FixedLCYRate: 0.03,
	}
}

func newEngine(t *testing.T, trials, workers int) *Engine {
	t.Helper()
	e := NewEngine(trials, 42)
	e.Workers = workers
	e.BatchSize = 64
	return e
}

func TestRunIdenticalAcrossWorkerCounts(t *testing.T) {
	t.Parallel()
	in := newInputs(t)

	one, err := newEngine(t, 1000, 1).Run(context.Background(), in)
	require.NoError(t, err)
	many, err := newEngine(t, 1000, 7).Run(context.Background(), in)
	require.NoError(t, err)

	if diff := cmp.Diff(one, many); diff != "" {
		t.Fatalf("distribution depends on worker count (-1 +7):\n%s", diff)
	}
	assert.Len(t, one.Losses, 1000)
	assert.False(t, one.Incomplete)
}

func TestRunSeedChangesDraws(t *testing.T) {
	t.Parallel()
	in := newInputs(t)

	a, err := newEngine(t, 500, 2).Run(context.Background(), in)
	require.NoError(t, err)
	e := newEngine(t, 500, 2)
	e.Seed = 43
	b, err := e.Run(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, a.Losses, b.Losses)
}

func TestRunLossOnlyOnDefault(t *testing.T) {
	t.Parallel()
	in := newInputs(t)
	in.Currencies = []string{"KES"}
	in.Weights = map[string]float64{"KES": 1}

	dist, err := newEngine(t, 2000, 4).Run(context.Background(), in)
	require.NoError(t, err)

	positive := 0
	for _, l := range dist.Losses {
		assert.GreaterOrEqual(t, l, 0.0)
		if l > 0 {
			positive++
		}
	}
	// On a rising path every default leaves the lender in the money.
	assert.Equal(t, dist.Defaults, positive)
	assert.Equal(t, 2000, dist.Defaults+dist.Censored)
	assert.Greater(t, dist.Mean(), 0.0)

	// P(default within 3y) at 30% annual PD is 1-0.7^3.
	assert.InDelta(t, 0.657, float64(dist.Defaults)/2000, 0.05)
}

func TestRunShortSeriesContributesZero(t *testing.T) {
	t.Parallel()
	in := newInputs(t)
	in.History["NGN"] = series("NGN", 100, 101)

	dist, err := newEngine(t, 300, 3).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 300, dist.Degenerate)

	kesOnly := newInputs(t)
	kesOnly.Currencies = []string{"KES"}
	ref, err := newEngine(t, 300, 3).Run(context.Background(), kesOnly)
	require.NoError(t, err)

	// The short series consumes no draws, so KES sees the same stream.
	assert.Equal(t, ref.Losses, dist.Losses)
}

func TestRunAllCensored(t *testing.T) {
	t.Parallel()
	in := newInputs(t)
	in.StressPD = 1e-12

	dist, err := newEngine(t, 200, 2).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 400, dist.Censored)
	assert.Zero(t, dist.Defaults)
	assert.Zero(t, dist.Mean())
}

func TestRunRejectsBadInputs(t *testing.T) {
	t.Parallel()

	in := newInputs(t)
	in.Currencies = append(in.Currencies, "GHS")
	_, err := newEngine(t, 10, 1).Run(context.Background(), in)
	assert.ErrorContains(t, err, "GHS")

	in = newInputs(t)
	in.StressPD = 1
	_, err = newEngine(t, 10, 1).Run(context.Background(), in)
	assert.Error(t, err)

	_, err = newEngine(t, 0, 1).Run(context.Background(), newInputs(t))
	assert.Error(t, err)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dist, err := newEngine(t, 100, 2).Run(ctx, newInputs(t))
	require.NoError(t, err)
	assert.True(t, dist.Incomplete)
	assert.Zero(t, dist.Len())
	assert.Equal(t, 100, dist.Requested)
}

func TestRunCancelledMidway(t *testing.T) {
	t.Parallel()
	in := newInputs(t)

	full, err := newEngine(t, 640, 4).Run(context.Background(), in)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newEngine(t, 640, 4)
	e.afterBatch = func(done int) {
		if done >= 128 {
			cancel()
		}
	}
	part, err := e.Run(ctx, in)
	require.NoError(t, err)

	assert.True(t, part.Incomplete)
	require.Equal(t, 128, part.Len())
	assert.Equal(t, full.Losses[:128], part.Losses)
}

func TestMetricsCountTrials(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	e := newEngine(t, 250, 3)
	e.Metrics = NewMetrics(reg)

	in := newInputs(t)
	in.History["NGN"] = series("NGN", 1, 2)
	dist, err := e.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 250.0, testutil.ToFloat64(e.Metrics.Trials))
	assert.Equal(t, float64(dist.Defaults), testutil.ToFloat64(e.Metrics.Draws.WithLabelValues("default")))
	assert.Equal(t, float64(dist.Censored), testutil.ToFloat64(e.Metrics.Draws.WithLabelValues("censored")))
	assert.Equal(t, 250.0, testutil.ToFloat64(e.Metrics.Degenerate))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics.Runs.WithLabelValues("complete")))
}

func TestSplitRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, splitRange(0, 10, 3))
	assert.Equal(t, [][2]int{{5, 6}, {6, 7}}, splitRange(5, 7, 8))
	assert.Nil(t, splitRange(3, 3, 2))
}

func TestSubSeedStreamsDiffer(t *testing.T) {
	t.Parallel()
	seen := map[uint64]bool{}
	for i := uint64(0); i < 1000; i++ {
		s := SubSeed(7, i)
		assert.False(t, seen[s], "collision at stream %d", i)
		seen[s] = true
	}
	assert.Equal(t, SubSeed(7, 3), SubSeed(7, 3))
	assert.NotEqual(t, SubSeed(7, 3), SubSeed(8, 3))
}

func TestExceedance(t *testing.T) {
	t.Parallel()
	d := LossDistribution{Losses: []float64{0, 0, 10, 20, 50}}
	got := d.Exceedance([]float64{0, 15, 100})
	want := []ExceedancePoint{{0, 0.6}, {15, 0.4}, {100, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("exceedance (-want +got):\n%s", diff)
	}
	assert.Equal(t, []ExceedancePoint{{Threshold: 1}}, LossDistribution{}.Exceedance([]float64{1}))
}
