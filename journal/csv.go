package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	runsHeader   = []string{"run_id", "created_at", "seed", "phase", "currencies", "notional", "stress_pd", "trials", "completed", "incomplete", "expected_loss", "tail_method", "confidence", "tail_loss", "severity_capital", "implied_leverage", "equity_roe", "break_even_fee_bps"}
	lossesHeader = []string{"run_id", "trial", "loss"}
)

// CSVJournal appends to a runs file and a losses file, writing the header
// only when a file is new.
type CSVJournal struct {
	runs   *csv.Writer
	losses *csv.Writer
	rf, lf *os.File
}

func NewCSV(runsPath, lossesPath string) (*CSVJournal, error) {
	rf, rw, err := openAppend(runsPath, runsHeader)
	if err != nil {
		return nil, err
	}
	lf, lw, err := openAppend(lossesPath, lossesHeader)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}
	return &CSVJournal{runs: rw, losses: lw, rf: rf, lf: lf}, nil
}

func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, nil, err
	}
	w := csv.NewWriter(fh)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
	}
	return fh, w, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.CreatedAt.UTC().Format(time.RFC3339),
		strconv.FormatUint(r.Seed, 10),
		strconv.Itoa(r.Phase),
		r.Currencies,
		Cents(r.Notional).StringFixed(2),
		f(r.StressPD),
		strconv.Itoa(r.Trials),
		strconv.Itoa(r.Completed),
		strconv.FormatBool(r.Incomplete),
		Cents(r.ExpectedLoss).StringFixed(2),
		r.TailMethod,
		f(r.Confidence),
		Cents(r.TailLoss).StringFixed(2),
		f(r.SeverityCapital),
		f(r.ImpliedLeverage),
		f(r.EquityROE),
		f(r.BreakEvenFeeBps),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordLosses(runID string, losses []float64) error {
	for i, l := range losses {
		if err := j.losses.Write([]string{runID, strconv.Itoa(i), f(l)}); err != nil {
			return err
		}
	}
	j.losses.Flush()
	return j.losses.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.losses.Flush()
	if err := j.losses.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.lf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
