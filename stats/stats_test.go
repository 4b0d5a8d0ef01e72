package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	t.Parallel()

	xs := []float64{4, 1, 3, 2, 5}

	tests := []struct {
		name string
		q    float64
		want float64
	}{
		{"min", 0, 1},
		{"max", 1, 5},
		{"median", 0.5, 3},
		{"quarter", 0.25, 2},
		{"interpolated", 0.9, 4.6},
		{"deep tail", 0.995, 4.98},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Quantile(xs, tt.q), 1e-12)
		})
	}
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	xs := []float64{3, 1, 2}
	_ = Quantile(xs, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestEmptyInputs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Quantile(nil, 0.5))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, FractionPositive(nil))

	m, n := TailMean(nil, 0)
	assert.Equal(t, 0.0, m)
	assert.Equal(t, 0, n)
}

func TestTailMean(t *testing.T) {
	t.Parallel()

	m, n := TailMean([]float64{1, 2, 3, 4}, 3)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 3.5, m, 1e-12)
}

func TestFractionPositive(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, FractionPositive([]float64{0, 0.1, 0, 2}), 1e-12)
}

func TestNonDecreasing(t *testing.T) {
	t.Parallel()

	assert.True(t, NonDecreasing([]float64{1, 1, 2, 3}, 0))
	assert.False(t, NonDecreasing([]float64{1, 3, 2}, 0))
	assert.True(t, NonDecreasing([]float64{1, 1 - 1e-13}, 1e-12))
	assert.True(t, NonDecreasing(nil, 0))
}

func TestMean(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, -1, Mean([]float64{-1}), 1e-12)
}
