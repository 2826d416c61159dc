package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BreakoutSentinel/internal/backtest"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/recorder"
	"BreakoutSentinel/internal/strategy"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*recorder.RunRecord
}

func (f *fakeRecorder) RecordRun(rec *recorder.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, rec)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

// breakoutBars is a flat series whose last candle breaks the channel top.
func breakoutBars(n int) []model.OHLCV {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: t0.Add(time.Duration(i) * time.Hour), Open: 9.5, High: 10, Low: 9, Close: 9.5, Volume: 1}
	}
	bars[n-1].High = 20
	bars[n-1].Close = 19
	return bars
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeNotifier, *fakeRecorder) {
	t.Helper()
	eng, err := strategy.NewEngine(strategy.DefaultParams())
	require.NoError(t, err)
	flat := breakoutBars(30)
	flat[29] = flat[28]
	flat[29].Time = flat[28].Time.Add(time.Hour)
	fetcher := &collector.MockFetcher{Data: map[string][]model.OHLCV{
		"BRK":   breakoutBars(30),
		"QUIET": flat,
		"BAD":   breakoutBars(3),
	}}
	runner := &backtest.Runner{
		Collector: collector.NewCollector(fetcher, "1h", 30),
		Engine:    eng,
		Parallel:  2,
	}
	n, rec := &fakeNotifier{}, &fakeRecorder{}
	return NewScheduler(context.Background(), runner, []string{"BRK", "QUIET", "BAD"}, n, rec), n, rec
}

func TestScan_AlertsOncePerCandle(t *testing.T) {
	s, n, rec := newTestScheduler(t)

	res := s.Scan()
	require.Len(t, res.Summaries, 2)
	assert.Equal(t, "BRK", res.Summaries[0].Symbol)
	assert.Equal(t, "QUIET", res.Summaries[1].Symbol)
	require.Contains(t, res.Failed, "BAD")
	assert.Equal(t, 1, res.Alerts)
	assert.Len(t, rec.runs, 2)

	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "BRK")
	assert.Contains(t, n.msgs[0], "Enter long")

	res = s.Scan()
	assert.Equal(t, 0, res.Alerts)
	assert.Len(t, n.msgs, 1)
	assert.Len(t, rec.runs, 4)
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	assert.Equal(t, "No scan has run yet.", s.HandleCommand("/status"))

	reply := s.HandleCommand("/scan")
	assert.Contains(t, reply, "BRK: 30 bars, in 1/0")
	assert.Contains(t, reply, "BAD: ❌")

	assert.Equal(t, reply, s.HandleCommand("/status"))
	assert.Contains(t, s.HandleCommand("/params"), "lookback_period: 20")
	assert.True(t, strings.HasPrefix(s.HandleCommand("hello"), "Commands:"))
}

func TestRegisterAll_RejectsBadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	assert.Error(t, s.RegisterAll("every hour"))
	assert.NoError(t, s.RegisterAll("0 5 * * * *"))
}

func TestAlertState_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "scan.json")

	s, n, _ := newTestScheduler(t)
	s.StateFile = path
	require.NoError(t, s.LoadState())
	assert.Equal(t, 1, s.Scan().Alerts)
	require.Len(t, n.msgs, 1)

	restarted, n2, _ := newTestScheduler(t)
	restarted.StateFile = path
	require.NoError(t, restarted.LoadState())
	assert.Equal(t, 0, restarted.Scan().Alerts)
	assert.Empty(t, n2.msgs)
}

func TestLoadAlertState_Missing(t *testing.T) {
	state, err := LoadAlertState(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, state.Alerted)
}
