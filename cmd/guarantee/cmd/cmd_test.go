package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/guarantee/config"
	"github.com/rustyeddy/guarantee/journal"
)

func execArgs(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	return rootCmd.Execute()
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicle.yaml")

	require.NoError(t, execArgs(t, "config", "init", "-o", path))
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Universe.Currencies, cfg.Universe.Currencies)

	require.NoError(t, execArgs(t, "config", "validate", "-f", path))
}

func TestDemoJournalsRun(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.sqlite")
	out := filepath.Join(dir, "report.md")
	fx := filepath.Join(dir, "fx.csv")
	metrics := filepath.Join(dir, "sim.prom")

	require.NoError(t, execArgs(t, "demo",
		"--trials", "200", "--months", "72",
		"--out", out, "--journal", "sqlite", "--db", db,
		"--write-fx", fx, "--metrics-file", metrics))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Monte Carlo Losses")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "guarantee_sim_trials_total 200")

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.Len(t, runs, 1)
	assert.Equal(t, 200, runs[0].Completed)

	require.NoError(t, execArgs(t, "journal", "list", "--db", db))
	require.NoError(t, execArgs(t, "journal", "show", runs[0].RunID, "--db", db))

	// The synthetic history written by demo feeds run.
	cfgPath := filepath.Join(dir, "vehicle.yaml")
	cfg := config.Default()
	cfg.Run.Trials = 100
	require.NoError(t, cfg.SaveToFile(cfgPath))
	require.NoError(t, execArgs(t, "run", "-c", cfgPath, "--fx", fx, "--out", filepath.Join(dir, "run.md")))
}

func TestReturnsRejectsInfeasibleLeverage(t *testing.T) {
	err := execArgs(t, "returns", "--leverage", "1")
	assert.ErrorContains(t, err, "reduce leverage")

	require.NoError(t, execArgs(t, "returns", "--leverage", "12", "--el-bps", "20"))
	require.NoError(t, execArgs(t, "returns", "--sweep"))
}
