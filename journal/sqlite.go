package journal

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	r = roundMoney(r)
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created_at, seed, phase, currencies, notional, stress_pd, trials, completed, incomplete,
		 expected_loss, tail_method, confidence, tail_loss, severity_capital, implied_leverage, equity_roe, break_even_fee_bps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedAt.UTC(), strconv.FormatUint(r.Seed, 10), r.Phase, r.Currencies, r.Notional, r.StressPD,
		r.Trials, r.Completed, r.Incomplete,
		r.ExpectedLoss, r.TailMethod, r.Confidence, r.TailLoss, r.SeverityCapital, r.ImpliedLeverage, r.EquityROE, r.BreakEvenFeeBps,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

// RecordLosses stores the loss distribution in trial order.
func (j *SQLite) RecordLosses(runID string, losses []float64) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO losses (run_id, trial, loss) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, l := range losses {
		if _, err := stmt.Exec(runID, i, l); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record loss %d for run %s: %w", i, runID, err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
