package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Trials      prometheus.Counter
	Draws       *prometheus.CounterVec
	Degenerate  prometheus.Counter
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Trials: f.NewCounter(prometheus.CounterOpts{
			Namespace: "guarantee",
			Subsystem: "sim",
			Name:      "trials_total",
			Help:      "Monte Carlo trials completed.",
		}),
		Draws: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guarantee",
			Subsystem: "sim",
			Name:      "default_draws_total",
			Help:      "Per-currency default draws by outcome.",
		}, []string{"outcome"}),
		Degenerate: f.NewCounter(prometheus.CounterOpts{
			Namespace: "guarantee",
			Subsystem: "sim",
			Name:      "degenerate_series_total",
			Help:      "Currency draws skipped for lack of history.",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guarantee",
			Subsystem: "sim",
			Name:      "runs_total",
			Help:      "Engine runs by completion status.",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "guarantee",
			Subsystem: "sim",
			Name:      "run_duration_seconds",
			Help:      "Wall time of engine runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) observeBatch(trials int, t tally) {
	if m == nil {
		return
	}
	m.Trials.Add(float64(trials))
	m.Draws.WithLabelValues(OutcomeDefault.String()).Add(float64(t.defaults))
	m.Draws.WithLabelValues(OutcomeCensored.String()).Add(float64(t.censored))
	m.Degenerate.Add(float64(t.degenerate))
}

func (m *Metrics) observeRun(d LossDistribution, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "complete"
	if d.Incomplete {
		status = "incomplete"
	}
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
