package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/guarantee/capital"
	"github.com/rustyeddy/guarantee/journal"
	"github.com/rustyeddy/guarantee/pkg/id"
	"github.com/rustyeddy/guarantee/stats"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run journal",
	Long: `Query and display run records from the SQLite journal.

Subcommands:
  list  - List recent runs
  show  - Show one run as an Org entry

Examples:
  guarantee journal list --limit 5
  guarantee journal show 01HX3Q8Z0K5W4N6T2V9B7C1D3E`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./guarantee.sqlite", "path to SQLite journal DB")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(journalLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tPHASE\tTRIALS\tEL (USD)\tTAIL (USD)\tROE")
	for _, r := range runs {
		trials := fmt.Sprintf("%d/%d", r.Completed, r.Trials)
		if r.Incomplete {
			trials += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%.2f%%\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.Phase, trials,
			journal.Cents(r.ExpectedLoss).StringFixed(2), journal.Cents(r.TailLoss).StringFixed(2), r.EquityROE*100)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if _, err := id.Time(runID); err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	org, err := journal.FormatRunOrg(rec)
	if err != nil {
		return err
	}
	fmt.Print(org)

	losses, err := j.Losses(runID)
	if err != nil {
		return fmt.Errorf("get losses: %w", err)
	}
	if len(losses) > 0 {
		fmt.Println("\n** Loss Distribution")
		fmt.Printf("- Mean:   %s\n", journal.Cents(stats.Mean(losses)).StringFixed(2))
		for _, q := range []float64{0.5, 0.9, 0.99, 0.995} {
			fmt.Printf("- Q%-5g %s\n", q*100, journal.Cents(stats.Quantile(losses, q)).StringFixed(2))
		}
		fmt.Printf("- ES99:   %s\n", journal.Cents(capital.VaROrES(losses, 0.99, capital.ES)).StringFixed(2))
	}
	return nil
}
