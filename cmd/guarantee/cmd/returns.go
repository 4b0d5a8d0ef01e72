package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/guarantee/capital"
	"github.com/rustyeddy/guarantee/config"
)

var returnsCmd = &cobra.Command{
	Use:   "returns",
	Short: "Price the capital stack at a given leverage",
	Long: `Allocate the configured capital stack at a target leverage (equity = 1/leverage,
other layers scaled in proportion) and show the fee, cost and loss waterfall.

Examples:
  guarantee returns --leverage 12 --el-bps 20
  guarantee returns -c vehicle.yaml --sweep
  guarantee returns --leverage 0     # configured widths as they are`,
	RunE: runReturns,
}

var (
	returnsConfigPath string
	returnsLeverage   float64
	returnsELBps      float64
	returnsSweep      bool
	returnsJSON       bool
)

func init() {
	rootCmd.AddCommand(returnsCmd)

	returnsCmd.Flags().StringVarP(&returnsConfigPath, "config", "c", "", "config file (default: built-in defaults)")
	returnsCmd.Flags().Float64Var(&returnsLeverage, "leverage", 10, "target leverage; 0 uses the configured stack widths")
	returnsCmd.Flags().Float64Var(&returnsELBps, "el-bps", 0, "expected loss in bps of notional per year")
	returnsCmd.Flags().BoolVar(&returnsSweep, "sweep", false, "tabulate equity ROE for leverage 5x..30x")
	returnsCmd.Flags().BoolVar(&returnsJSON, "json", false, "print the snapshot as JSON")
}

func runReturns(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if returnsConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(returnsConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	stack, err := cfg.Stack()
	if err != nil {
		return err
	}
	econ := cfg.CapitalEconomics()
	notional := cfg.Portfolio.NotionalUSDTotal
	elRate := returnsELBps / 10000.0

	if returnsSweep {
		levs := make([]float64, 0, 26)
		for l := 5; l <= 30; l++ {
			levs = append(levs, float64(l))
		}
		snaps, err := capital.LeverageSweep(stack, econ, notional, elRate, levs)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Leverage\tEquity\tMezz\tCG\tEquity ROE\t")
		for _, s := range snaps {
			fmt.Fprintf(tw, "%.0fx\t%.2f%%\t%.2f%%\t%.2f%%\t%.2f%%\t\n",
				s.Leverage, s.EquityPct*100, s.MezzPct*100, s.CounterGuaranteePct*100, s.EquityROE*100)
		}
		return tw.Flush()
	}

	var sizing capital.Sizing = capital.NotionalSizing{}
	if returnsLeverage != 0 {
		sizing = capital.LeverageSizing{Leverage: returnsLeverage}
	}
	s, err := capital.Returns(stack, econ, sizing, notional, elRate)
	if err != nil {
		return err
	}

	if returnsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("✓ Stack returns (%s)\n", s.Sizing)
	fmt.Printf("  Leverage:            %.2fx\n", s.Leverage)
	fmt.Printf("  Equity / Mezz / CG:  %.2f%% / %.2f%% / %.2f%% of notional\n", s.EquityPct*100, s.MezzPct*100, s.CounterGuaranteePct*100)
	fmt.Printf("  Equity residual:     %.2f bps ($%.0f)\n", s.EquityResidualRate*10000, s.Amounts.EquityResidual)
	fmt.Printf("  Equity ROE:          %.2f%%\n", s.EquityROE*100)
	fmt.Printf("  Mezz return:         %.2f%%\n", s.MezzReturn*100)
	fmt.Printf("  Guarantor return:    %.2f%% on guaranteed amount\n", s.GuarantorReturnOnGuaranteedAmount*100)
	fmt.Printf("  Guarantor ROE:       %.2f%%\n", s.GuarantorROE*100)
	be := capital.BreakEvenFeeBps(cfg.CapitalTarget.TargetROE, s.Amounts.EquityAmount, s.Amounts.FixedCosts(), notional)
	fmt.Printf("  Break-even fee:      %.1f bps for %.0f%% ROE\n", be, cfg.CapitalTarget.TargetROE*100)
	for _, w := range s.Warnings {
		fmt.Printf("! %s\n", w)
	}
	return nil
}
