package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of trials between cancellation checks.
const DefaultBatchSize = 500

// Engine runs Monte Carlo loss trials over a worker pool. The zero value is
// not usable; set Trials and Seed at least.
type Engine struct {
	Trials    int
	Workers   int
	BatchSize int
	Seed      uint64

	Logger  *zap.Logger
	Metrics *Metrics

	// afterBatch is called with the number of completed trials after every
	// batch barrier.
	afterBatch func(done int)
}

// NewEngine returns an engine with default worker and batch settings.
func NewEngine(trials int, seed uint64) *Engine {
	return &Engine{
		Trials:    trials,
		Workers:   runtime.GOMAXPROCS(0),
		BatchSize: DefaultBatchSize,
		Seed:      seed,
		Logger:    zap.NewNop(),
	}
}

type tally struct {
	defaults, censored, degenerate int
}

func (t *tally) add(tr Trial) {
	for _, d := range tr.Draws {
		switch d.Outcome {
		case OutcomeDefault:
			t.defaults++
		case OutcomeCensored:
			t.censored++
		case OutcomeDegenerate:
			t.degenerate++
		}
	}
}

// Run evaluates Trials trials. Trial i always writes slot i of the result,
// so the distribution is identical for any worker count. If ctx is cancelled
// the trials completed so far are returned with Incomplete set.
func (e *Engine) Run(ctx context.Context, in Inputs) (LossDistribution, error) {
	if e.Trials <= 0 {
		return LossDistribution{}, fmt.Errorf("sim: trials must be positive, got %d", e.Trials)
	}
	if err := in.Validate(); err != nil {
		return LossDistribution{}, err
	}

	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	batch := e.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	start := time.Now()
	losses := make([]float64, e.Trials)
	var total tally
	done := 0

	for done < e.Trials {
		if ctx.Err() != nil {
			break
		}
		end := min(done+batch, e.Trials)

		chunks := splitRange(done, end, workers)
		tallies := make([]tally, len(chunks))
		g := new(errgroup.Group)
		g.SetLimit(workers)
		for c, r := range chunks {
			g.Go(func() error {
				for i := r[0]; i < r[1]; i++ {
					tr, err := RunTrial(i, e.Seed, in)
					if err != nil {
						return fmt.Errorf("sim: trial %d: %w", i, err)
					}
					losses[i] = tr.Loss
					tallies[c].add(tr)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return LossDistribution{}, err
		}

		var bt tally
		for _, t := range tallies {
			bt.defaults += t.defaults
			bt.censored += t.censored
			bt.degenerate += t.degenerate
		}
		total.defaults += bt.defaults
		total.censored += bt.censored
		total.degenerate += bt.degenerate
		e.Metrics.observeBatch(end-done, bt)

		done = end
		log.Debug("batch complete", zap.Int("done", done), zap.Int("trials", e.Trials))
		if e.afterBatch != nil {
			e.afterBatch(done)
		}
	}

	dist := LossDistribution{
		Losses:     losses[:done],
		Requested:  e.Trials,
		Incomplete: done < e.Trials,
		Defaults:   total.defaults,
		Censored:   total.censored,
		Degenerate: total.degenerate,
	}
	e.Metrics.observeRun(dist, time.Since(start))

	if dist.Incomplete {
		log.Warn("monte carlo cancelled",
			zap.Int("completed", done),
			zap.Int("requested", e.Trials),
			zap.Error(ctx.Err()))
	} else {
		log.Info("monte carlo complete",
			zap.Int("trials", done),
			zap.Int("workers", workers),
			zap.Int("defaults", dist.Defaults),
			zap.Int("degenerate", dist.Degenerate),
			zap.Duration("elapsed", time.Since(start)))
	}
	return dist, nil
}

// splitRange cuts [lo, hi) into at most n contiguous pieces.
func splitRange(lo, hi, n int) [][2]int {
	size := hi - lo
	if size <= 0 {
		return nil
	}
	n = min(n, size)
	out := make([][2]int, 0, n)
	step := size / n
	rem := size % n
	at := lo
	for k := 0; k < n; k++ {
		w := step
		if k < rem {
			w++
		}
		out = append(out, [2]int{at, at + w})
		at += w
	}
	return out
}
