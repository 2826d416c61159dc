package recorder

import (
	"time"

	"github.com/google/uuid"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/strategy"
)

// RunRecord is one persisted engine run.
type RunRecord struct {
	ID        string
	Source    string // "scan" or "backtest"
	StartedAt time.Time
	Elapsed   time.Duration
	Params    strategy.Params
	Result    *model.RunResult
}

// NewRunRecord stamps res with a fresh run ID.
func NewRunRecord(source string, p strategy.Params, res *model.RunResult, startedAt time.Time, elapsed time.Duration) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: startedAt,
		Elapsed:   elapsed,
		Params:    p,
		Result:    res,
	}
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
