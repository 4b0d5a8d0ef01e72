package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the vehicle model against historical data",
	Long: `Load a configuration and FX history, then run exposure sampling, capital
sizing, Monte Carlo losses (phase >= 2) and stack returns.

The FX file is a wide CSV: a date column followed by one column per
currency, quoted in local currency per USD.

Examples:
  guarantee run -c vehicle.yaml --fx data/fx.csv
  guarantee run -c vehicle.yaml --fx data/fx.csv --rates data/rates.csv --journal sqlite --db runs.sqlite
  guarantee run -c vehicle.yaml --timeout 30s --metrics-file sim.prom`,
	RunE: runRun,
}

var (
	runConfigPath string
	runFXPath     string
	runRatesPath  string
	runOpts       runOptions
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (required)")
	runCmd.Flags().StringVar(&runFXPath, "fx", "", "FX history CSV (default data.fx_file)")
	runCmd.Flags().StringVar(&runRatesPath, "rates", "", "short-rate CSV (default data.rates.file)")
	addRunOutputFlags(runCmd, &runOpts, "report.md")
	runCmd.MarkFlagRequired("config")
}

func addRunOutputFlags(c *cobra.Command, opts *runOptions, defaultOut string) {
	c.Flags().StringVarP(&opts.out, "out", "o", defaultOut, "Markdown report path (empty to skip)")
	c.Flags().StringVar(&opts.journalType, "journal", "", "journal type override (csv or sqlite)")
	c.Flags().StringVar(&opts.dbPath, "db", "", "SQLite journal path override")
	c.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write simulation metrics in Prometheus text format")
	c.Flags().DurationVar(&opts.timeout, "timeout", 0, "stop the Monte Carlo phase after this long (0 = no limit)")
	c.Flags().IntVar(&opts.workers, "workers", 0, "simulation workers (default run.workers or GOMAXPROCS)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fxPath := runFXPath
	if fxPath == "" {
		fxPath = cfg.Data.FXFile
	}
	if fxPath == "" {
		return fmt.Errorf("no FX history: pass --fx or set data.fx_file")
	}
	ratesPath := ""
	if cfg.Data.Rates.Enabled {
		ratesPath = runRatesPath
		if ratesPath == "" {
			ratesPath = cfg.Data.Rates.File
		}
		if ratesPath == "" {
			return fmt.Errorf("rates enabled: pass --rates or set data.rates.file")
		}
	}

	h, err := market.LoadHistory(fxPath, ratesPath, cfg.Data.Rates.Mapping)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	logger.Info("history loaded",
		zap.String("fx", fxPath),
		zap.Int("fx_series", len(h.FX)),
		zap.Int("rate_series", len(h.Rates)))

	return execute(cmd.Context(), cfg, h, runOpts)
}
