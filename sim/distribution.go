package sim

import (
	"github.com/rustyeddy/guarantee/stats"
)

// LossDistribution holds one total loss per completed trial, in trial
// order.
type LossDistribution struct {
	Losses []float64

	// Requested is the configured trial count. When Incomplete is set,
	// len(Losses) < Requested.
	Requested  int
	Incomplete bool

	// Per currency-draw outcome counts.
	Defaults   int
	Censored   int
	Degenerate int
}

func (d LossDistribution) Len() int { return len(d.Losses) }

func (d LossDistribution) Mean() float64 {
	return stats.Mean(d.Losses)
}

func (d LossDistribution) Quantile(q float64) float64 {
	return stats.Quantile(d.Losses, q)
}

// ExceedancePoint is P(loss > Threshold).
type ExceedancePoint struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// Exceedance returns the empirical exceedance probability for each
// threshold. An empty distribution yields zero probabilities.
func (d LossDistribution) Exceedance(thresholds []float64) []ExceedancePoint {
	out := make([]ExceedancePoint, len(thresholds))
	n := len(d.Losses)
	for i, th := range thresholds {
		out[i].Threshold = th
		if n == 0 {
			continue
		}
		count := 0
		for _, x := range d.Losses {
			if x > th {
				count++
			}
		}
		out[i].Probability = float64(count) / float64(n)
	}
	return out
}
