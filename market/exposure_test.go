package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(ccy string, rates ...float64) Series {
	s := Series{Currency: ccy, Rates: rates}
	start := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range rates {
		s.Dates = append(s.Dates, start.AddDate(0, i, 0))
	}
	return s
}

func TestPositiveExposureSamples(t *testing.T) {
	t.Parallel()

	s := monthly("KES", 100, 125, 80)

	got := PositiveExposureSamples(s, 60)
	// origins: t0=0 -> t=1,2 ; t0=1 -> t=2
	want := []float64{0, 100.0/80 - 1, 125.0/80 - 1}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestPositiveExposureSamplesWindow(t *testing.T) {
	t.Parallel()

	s := monthly("NGN", 100, 100, 100, 100, 100)

	assert.Len(t, PositiveExposureSamples(s, 1), 4)
	assert.Len(t, PositiveExposureSamples(s, 2), 4+3)
	assert.Len(t, PositiveExposureSamples(s, 60), 4+3+2+1)
	assert.Empty(t, PositiveExposureSamples(monthly("X", 100), 60))
	assert.Empty(t, PositiveExposureSamples(s, 0))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExposureSummary{}, Summarize(nil))

	got := Summarize([]float64{0, 0, 0.1, 0.2, 0.3})
	assert.InDelta(t, 0.6, got.PPositive, 1e-12)
	assert.InDelta(t, 0.12, got.Mean, 1e-12)
	assert.InDelta(t, 0.26, got.P90, 1e-12)
	assert.LessOrEqual(t, got.P90, got.P99)
	assert.LessOrEqual(t, got.P99, got.P995)
	assert.LessOrEqual(t, got.P995, 0.3)
}

func TestSyntheticMonthly(t *testing.T) {
	t.Parallel()

	s, err := SyntheticMonthly("GHS", time.Date(2015, 1, 15, 0, 0, 0, 0, time.UTC), 4, 0.05, 0.15, 36, 11)
	require.NoError(t, err)
	assert.Equal(t, 36, s.Len())
	assert.Equal(t, 4.0, s.At(0))
	assert.NoError(t, s.Validate())
	assert.Equal(t, time.Date(2015, 1, 31, 0, 0, 0, 0, time.UTC), s.Dates[0])
	assert.Equal(t, time.Date(2015, 2, 28, 0, 0, 0, 0, time.UTC), s.Dates[1])

	again, err := SyntheticMonthly("GHS", time.Date(2015, 1, 15, 0, 0, 0, 0, time.UTC), 4, 0.05, 0.15, 36, 11)
	require.NoError(t, err)
	assert.Equal(t, s.Rates, again.Rates)

	_, err = SyntheticMonthly("GHS", time.Now(), 4, 0, 0.1, 0, 1)
	assert.Error(t, err)
}

func TestSimulateGBMPaths(t *testing.T) {
	t.Parallel()

	paths := SimulateGBMPaths(100, 0, 0.2, 1.0/12, 12, 3, 5)
	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.Len(t, p, 13)
		assert.Equal(t, 100.0, p[0])
		for _, v := range p {
			assert.Greater(t, v, 0.0)
		}
	}
}
