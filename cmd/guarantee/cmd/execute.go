package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/journal"
	"github.com/rustyeddy/guarantee/market"
	"github.com/rustyeddy/guarantee/report"
	"github.com/rustyeddy/guarantee/sim"
	"github.com/rustyeddy/guarantee/vehicle"
)

// runOptions are the output flags shared by run and demo.
type runOptions struct {
	out         string
	journalType string
	dbPath      string
	metricsFile string
	timeout     time.Duration
	workers     int
}

func execute(ctx context.Context, cfg *config.Config, h market.History, opts runOptions) error {
	if opts.journalType != "" {
		cfg.Journal.Type = opts.journalType
	}
	if opts.dbPath != "" {
		cfg.Journal.DBPath = opts.dbPath
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	r := &vehicle.Runner{
		Config:  cfg,
		History: h,
		Logger:  logger,
		Metrics: sim.NewMetrics(reg),
		Workers: opts.workers,
	}
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := writeReport(opts.out, res); err != nil {
			return err
		}
	}
	if err := recordRun(cfg.Journal, res); err != nil {
		return err
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	printSummary(res, opts)
	return nil
}

func writeReport(path string, res *vehicle.Results) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Render(fh, res); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		if jc.DBPath == "" {
			return nil, fmt.Errorf("journal db_path required for SQLite type")
		}
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		if jc.RunsFile == "" || jc.LossesFile == "" {
			return nil, fmt.Errorf("journal runs_file and losses_file required for CSV type")
		}
		return journal.NewCSV(jc.RunsFile, jc.LossesFile)
	case "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}

func recordRun(jc config.JournalConfig, res *vehicle.Results) error {
	j, err := openJournal(jc)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	if err := j.RecordRun(res.Record()); err != nil {
		return err
	}
	if res.Losses != nil {
		if err := j.RecordLosses(res.RunID, res.Losses.Losses); err != nil {
			return err
		}
	}
	logger.Info("run journaled", zap.String("run_id", res.RunID), zap.String("type", jc.Type))
	return nil
}

func printSummary(res *vehicle.Results, opts runOptions) {
	cfg := res.Config
	fmt.Printf("✓ Run %s complete (phase %d)\n", res.RunID, cfg.Run.Phase)
	if res.Losses != nil {
		fmt.Printf("  Trials:            %d/%d", res.Losses.Len(), res.Losses.Requested)
		if res.Losses.Incomplete {
			fmt.Print("  (INCOMPLETE)")
		}
		fmt.Println()
		fmt.Printf("  %-3s @ %.1f%%:       $%s\n", res.TailMethod, cfg.CapitalTarget.Confidence*100, journal.Cents(res.TailLoss).StringFixed(2))
	}
	fmt.Printf("  Expected loss:     $%s (%s)\n", journal.Cents(res.ExpectedLoss).StringFixed(2), res.ExpectedLossSource)
	fmt.Printf("  Severity capital:  %.4f%% of notional\n", res.SeverityCapital*100)
	fmt.Printf("  Implied leverage:  %.2fx\n", res.ImpliedLeverage)
	fmt.Printf("  Equity ROE:        %.2f%%\n", res.Returns.EquityROE*100)
	fmt.Printf("  Break-even fee:    %.1f bps for %.0f%% ROE\n", res.BreakEvenFeeBps, res.TargetROE*100)
	if opts.out != "" {
		fmt.Printf("  Report:            %s\n", opts.out)
	}
	for _, c := range res.Checks {
		if !c.Passed {
			fmt.Printf("✗ Check failed: %s\n", c.Name)
		}
	}
	for _, w := range res.Warnings {
		fmt.Printf("! %s\n", w)
	}
}
