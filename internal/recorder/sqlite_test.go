package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/strategy"
)

func sampleResult(symbol string) *model.RunResult {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 4)
	for i := range bars {
		bars[i] = model.OHLCV{Time: t0.Add(time.Duration(i) * time.Hour), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	}
	sig := model.NewSignals(4)
	sig.EnterLong[1] = 1
	sig.ExitLong[3] = 1
	sig.EnterShort[3] = 1
	return &model.RunResult{
		Symbol:     symbol,
		Interval:   "1h",
		Bars:       bars,
		Indicators: model.NewIndicators(4),
		Signals:    sig,
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	p := strategy.DefaultParams()
	started := time.Now()
	first := NewRunRecord("backtest", p, sampleResult("BTC-USD"), started, 12*time.Millisecond)
	second := NewRunRecord("scan", p, sampleResult("ETH-USD"), started.Add(time.Second), time.Millisecond)
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, rec.RecordRun(first))
	require.NoError(t, rec.RecordRun(second))

	runs, err := rec.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, "ETH-USD", runs[0].Symbol)
	assert.Equal(t, "scan", runs[0].Source)

	got := runs[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 4, got.Bars)
	assert.Equal(t, 1, got.EnterLong)
	assert.Equal(t, 1, got.EnterShort)
	assert.Equal(t, 1, got.ExitLong)
	assert.Equal(t, 0, got.ExitShort)
	// candles 1 and 3 carry flags
	assert.Equal(t, 2, got.Signals)
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordRun(NewRunRecord("scan", strategy.DefaultParams(), sampleResult("X"), time.Now(), 0)))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()
	runs, err := rec.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunRecord{}))
	assert.NoError(t, r.Close())
}
