package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const runColumns = `run_id, created_at, seed, phase, currencies, notional, stress_pd, trials, completed, incomplete,
	expected_loss, tail_method, confidence, tail_loss, severity_capital, implied_leverage, equity_roe, break_even_fee_bps`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var rec RunRecord
	var seed string
	err := s.Scan(
		&rec.RunID,
		&rec.CreatedAt,
		&seed,
		&rec.Phase,
		&rec.Currencies,
		&rec.Notional,
		&rec.StressPD,
		&rec.Trials,
		&rec.Completed,
		&rec.Incomplete,
		&rec.ExpectedLoss,
		&rec.TailMethod,
		&rec.Confidence,
		&rec.TailLoss,
		&rec.SeverityCapital,
		&rec.ImpliedLeverage,
		&rec.EquityROE,
		&rec.BreakEvenFeeBps,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return RunRecord{}, fmt.Errorf("run %s: bad seed %q: %w", rec.RunID, seed, err)
	}
	return rec, nil
}

// GetRun returns a single run record by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Losses returns a run's loss distribution in trial order.
func (j *SQLite) Losses(runID string) ([]float64, error) {
	rows, err := j.db.Query(`SELECT loss FROM losses WHERE run_id = ? ORDER BY trial ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var l float64
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
