package guarantee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{"inside layer", 50, 30},
		{"below attach", 10, 0},
		{"above detach", 200, 60},
		{"at attach", 20, 0},
		{"at detach", 80, 60},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ApplyLayer(tt.raw, 0.02, 0.08, 1000), 1e-12)
		})
	}
}

func TestPayout(t *testing.T) {
	t.Parallel()

	full := Terms{CoveragePct: 1, AttachPct: 0.02, DetachPct: 0.08}
	assert.InDelta(t, 30.0, Payout(50, full, 1000), 1e-12)
	assert.InDelta(t, 0.0, Payout(-500, full, 1000), 1e-12)

	half := Terms{CoveragePct: 0.5, AttachPct: 0, DetachPct: 1}
	assert.InDelta(t, 25.0, Payout(50, half, 1000), 1e-12)
}
