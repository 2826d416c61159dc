package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BreakoutSentinel/internal/model"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func sampleRun() *model.RunResult {
	bars := []model.OHLCV{
		{Time: t0, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: t0.Add(time.Hour), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
		{Time: t0.Add(2 * time.Hour), Open: 2.5, High: 2.6, Low: 0.8, Close: 1, Volume: 30},
	}
	ind := model.NewIndicators(3)
	ind.HighestHigh[1] = 2
	ind.LowestLow[1] = 0.5
	ind.TrailingStop[1] = 0.5
	ind.TrailingStop[2] = 0.8
	sig := model.NewSignals(3)
	sig.EnterLong[1] = 1
	sig.ExitLong[2] = 1
	return &model.RunResult{
		Symbol:     "TEST",
		Interval:   "1h",
		Bars:       bars,
		Indicators: ind,
		Signals:    sig,
		Exits: []model.ExitEvent{
			{Side: model.SideLong, EntryIndex: 1, ExitIndex: 2, Portion: 1, Level: 1, Reason: model.ExitTrailingStop},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,open,high,low,close,volume,highest_high,lowest_low,trailing_stop,enter_long,enter_short,exit_long,exit_short", lines[0])
	assert.Equal(t, "2024-05-01T00:00:00Z,1,2,0.5,1.5,10,,,,0,0,0,0", lines[1])
	assert.Equal(t, "2024-05-01T01:00:00Z,1.5,3,1,2.5,20,2,0.5,0.5,1,0,0,0", lines[2])
	assert.Equal(t, "2024-05-01T02:00:00Z,2.5,2.6,0.8,1,30,,,0.8,0,0,1,0", lines[3])
}

func TestWriteExits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExits(&buf, sampleRun()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "side,entry_time,exit_time,bars_held,portion,level,reason", lines[0])
	assert.Equal(t, "LONG,2024-05-01T01:00:00Z,2024-05-01T02:00:00Z,1,1,1,TRAILING_STOP", lines[1])
}

func TestFloat_NaNIsEmpty(t *testing.T) {
	s, err := Float(math.NaN()).MarshalCSV()
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = Float(0.25).MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "0.25", s)
}

func TestSummarize(t *testing.T) {
	res := sampleRun()
	res.Exits = append(res.Exits,
		model.ExitEvent{Side: model.SideShort, EntryIndex: 0, ExitIndex: 2},
		model.ExitEvent{Side: model.SideShort, EntryIndex: 0, ExitIndex: 1},
	)
	res.Malformed = []*model.MalformedCandleError{{Index: 0, Field: "volume", Value: -1}}

	s := Summarize(res)
	assert.Equal(t, "TEST", s.Symbol)
	assert.Equal(t, 3, s.Bars)
	assert.Equal(t, 1, s.EnterLong)
	assert.Equal(t, 0, s.EnterShort)
	assert.Equal(t, 1, s.ExitLong)
	assert.Equal(t, 1, s.Malformed)
	// holds are 1, 2, 1
	assert.InDelta(t, 4.0/3.0, s.HoldMean, 1e-9)
	assert.Equal(t, 1.0, s.HoldMedian)
	assert.Equal(t, 2.0, s.HoldMax)
}

func TestSummarize_NoExits(t *testing.T) {
	res := sampleRun()
	res.Exits = nil
	s := Summarize(res)
	assert.Zero(t, s.HoldMean)
	assert.Zero(t, s.HoldMax)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, []Summary{Summarize(sampleRun())})
	out := buf.String()
	assert.Contains(t, out, "TEST")
	assert.Contains(t, strings.ToUpper(out), "HOLD MEAN")
}
