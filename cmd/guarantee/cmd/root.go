package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/guarantee/internal/logging"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "guarantee",
	Short: "Risk and pricing engine for a multi-currency FX guarantee vehicle",
	Long: `Guarantee sizes and prices a credit guarantee facility that covers lenders'
FX hedge exposure to defaulting borrowers.

It provides tools for:
  - Empirical FX exposure sampling from spot history
  - Monte Carlo default and loss simulation
  - Tail-risk capital sizing (VaR / ES) and implied leverage
  - Equity / mezzanine / counter-guarantee return allocation
  - A run journal backed by SQLite or CSV

Complete documentation is available at https://github.com/rustyeddy/guarantee`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{
			Level:   logLevel,
			Console: logConsole,
			File:    logFile,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel the running command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "human-readable log output on stderr")
}
