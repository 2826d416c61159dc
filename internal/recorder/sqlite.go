package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("component", "recorder")

// SQLiteRecorder persists runs and their flagged candles to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while scans write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			source            TEXT,
			symbol            TEXT NOT NULL,
			interval          TEXT,
			bars              INTEGER,
			lookback          INTEGER,
			trailing_lookback INTEGER,
			can_short         INTEGER,
			exit_mode         TEXT,
			enter_long        INTEGER,
			enter_short       INTEGER,
			exit_long         INTEGER,
			exit_short        INTEGER,
			malformed         INTEGER,
			first_candle      INTEGER,
			last_candle       INTEGER,
			duration_ms       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES runs(id),
			candle_index  INTEGER NOT NULL,
			candle_time   INTEGER NOT NULL,
			close         REAL,
			highest_high  REAL,
			lowest_low    REAL,
			trailing_stop REAL,
			enter_long    INTEGER,
			enter_short   INTEGER,
			exit_long     REAL,
			exit_short    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

// RecordRun writes the run row and one signals row per flagged candle in one transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := rec.Result
	sig, ind := res.Signals, res.Indicators

	var enterLong, enterShort, exitLong, exitShort int
	for i := 0; i < res.Len(); i++ {
		enterLong += sig.EnterLong[i]
		enterShort += sig.EnterShort[i]
		if sig.ExitLong[i] > 0 {
			exitLong++
		}
		if sig.ExitShort[i] > 0 {
			exitShort++
		}
	}
	var first, last int64
	if res.Len() > 0 {
		first = res.Bars[0].Time.Unix()
		last = res.Bars[res.LastIndex()].Time.Unix()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, timestamp, source, symbol, interval, bars, lookback, trailing_lookback, can_short, exit_mode,
		 enter_long, enter_short, exit_long, exit_short, malformed, first_candle, last_candle, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.Unix(), rec.Source, res.Symbol, res.Interval, res.Len(),
		rec.Params.Lookback, rec.Params.TrailingLookback, rec.Params.AllowShort, string(rec.Params.ExitMode),
		enterLong, enterShort, exitLong, exitShort, len(res.Malformed), first, last, rec.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO signals
		(run_id, candle_index, candle_time, close, highest_high, lowest_low, trailing_stop,
		 enter_long, enter_short, exit_long, exit_short)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare signals: %w", err)
	}
	defer stmt.Close()

	for i, b := range res.Bars {
		if !sig.Any(i) {
			continue
		}
		if _, err := stmt.Exec(rec.ID, i, b.Time.Unix(), b.Close,
			nullable(ind.HighestHigh[i]), nullable(ind.LowestLow[i]), nullable(ind.TrailingStop[i]),
			sig.EnterLong[i], sig.EnterShort[i], sig.ExitLong[i], sig.ExitShort[i]); err != nil {
			return fmt.Errorf("insert signal %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// RunRow is a stored run as read back for reporting.
type RunRow struct {
	ID         string
	Timestamp  time.Time
	Source     string
	Symbol     string
	Bars       int
	EnterLong  int
	EnterShort int
	ExitLong   int
	ExitShort  int
	Signals    int // stored signal rows
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT r.id, r.timestamp, r.source, r.symbol, r.bars,
			r.enter_long, r.enter_short, r.exit_long, r.exit_short,
			(SELECT COUNT(*) FROM signals s WHERE s.run_id = r.id)
		FROM runs r ORDER BY r.timestamp DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		var ts int64
		if err := rows.Scan(&row.ID, &ts, &row.Source, &row.Symbol, &row.Bars,
			&row.EnterLong, &row.EnterShort, &row.ExitLong, &row.ExitShort, &row.Signals); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		row.Timestamp = time.Unix(ts, 0)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
