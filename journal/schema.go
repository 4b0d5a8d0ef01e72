package journal

// Schema is applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	seed TEXT NOT NULL,
	phase INTEGER NOT NULL,
	currencies TEXT NOT NULL,
	notional REAL NOT NULL,
	stress_pd REAL NOT NULL,
	trials INTEGER NOT NULL,
	completed INTEGER NOT NULL,
	incomplete INTEGER NOT NULL,
	expected_loss REAL NOT NULL,
	tail_method TEXT NOT NULL,
	confidence REAL NOT NULL,
	tail_loss REAL NOT NULL,
	severity_capital REAL NOT NULL,
	implied_leverage REAL NOT NULL,
	equity_roe REAL NOT NULL,
	break_even_fee_bps REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS losses (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	trial INTEGER NOT NULL,
	loss REAL NOT NULL,
	PRIMARY KEY (run_id, trial)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
