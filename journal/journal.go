// Package journal keeps a record of finished vehicle runs.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunRecord summarises one finished run. Money fields are USD rounded to
// cents.
type RunRecord struct {
	RunID     string
	CreatedAt time.Time

	Seed       uint64
	Phase      int
	Currencies string
	Notional   float64
	StressPD   float64

	Trials     int
	Completed  int
	Incomplete bool

	ExpectedLoss    float64
	TailMethod      string
	Confidence      float64
	TailLoss        float64
	SeverityCapital float64 // fraction of notional
	ImpliedLeverage float64
	EquityROE       float64
	BreakEvenFeeBps float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordLosses(runID string, losses []float64) error
	Close() error
}

// Cents rounds a USD amount half away from zero to two places.
func Cents(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

func roundMoney(r RunRecord) RunRecord {
	r.Notional = Cents(r.Notional).InexactFloat64()
	r.ExpectedLoss = Cents(r.ExpectedLoss).InexactFloat64()
	r.TailLoss = Cents(r.TailLoss).InexactFloat64()
	return r
}
