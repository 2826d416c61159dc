package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// naiveLadder is the entry-centred nested scan the sweep replaces.
func naiveLadder(bars []model.OHLCV, enterLong []int, tiers []model.RewardTier) []float64 {
	exit := make([]float64, len(bars))
	for i := range bars {
		if enterLong[i] != 1 {
			continue
		}
		entry := bars[i].Close
		stop := bars[i].Low
		for _, t := range tiers {
			price := entry + (entry-stop)*t.Multiple
			for j := i + 1; j < len(bars); j++ {
				if bars[j].High >= price {
					exit[j] = math.Min(1, exit[j]+t.Portion)
					break
				}
			}
		}
	}
	return exit
}

func ladderParams(force bool) Params {
	p := DefaultParams()
	p.ExitMode = model.ExitModeTiered
	p.ForceExitAtEnd = force
	return p
}

func TestScanLadder_LongTiers(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 98, 101, 95, 100),
		bar(1, 100, 105, 99, 104),
		bar(2, 104, 111, 103, 110),
		bar(3, 110, 125, 109, 124),
		bar(4, 124, 130, 120, 128),
	}
	enterLong := []int{1, 0, 0, 0, 0}
	none := make([]int, len(bars))

	exitLong, exitShort, events := ScanLadder(bars, nil, enterLong, none, ladderParams(false))
	assert.Equal(t, []float64{0, 0, 0.3, 0.3, 0}, exitLong)
	assert.Equal(t, make([]float64, len(bars)), exitShort)
	require.Len(t, events, 2)
	assert.Equal(t, 110.0, events[0].Level)
	assert.Equal(t, 120.0, events[1].Level)
	assert.Equal(t, model.ExitRewardTier, events[0].Reason)

	// a tier was reached, so the end-of-data fallback stays out of it
	exitLong, _, events = ScanLadder(bars, nil, enterLong, none, ladderParams(true))
	assert.Equal(t, []float64{0, 0, 0.3, 0.3, 0}, exitLong)
	assert.Len(t, events, 2)
}

func TestScanLadder_PartialExitThenEndOfData(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 98, 101, 95, 100),
		bar(1, 100, 111, 99, 108),
		bar(2, 108, 112, 104, 110),
	}
	exitLong, _, events := ScanLadder(bars, nil, []int{1, 0, 0}, []int{0, 0, 0}, ladderParams(true))

	assert.Equal(t, []float64{0, 0.3, 0}, exitLong)
	require.Len(t, events, 1)
	assert.Equal(t, model.ExitRewardTier, events[0].Reason)
	assert.Equal(t, 1, events[0].ExitIndex)
}

func TestScanLadder_EndOfDataWhenNoTierReached(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 98, 101, 95, 100),
		bar(1, 100, 105, 99, 104),
		bar(2, 104, 108, 103, 107),
	}
	exitLong, _, events := ScanLadder(bars, nil, []int{1, 0, 0}, []int{0, 0, 0}, ladderParams(true))

	assert.Equal(t, []float64{0, 0, 1}, exitLong)
	require.Len(t, events, 1)
	assert.Equal(t, model.ExitEndOfData, events[0].Reason)
	assert.Equal(t, 0, events[0].EntryIndex)
	assert.Equal(t, 1.0, events[0].Portion)

	exitLong, _, events = ScanLadder(bars, nil, []int{1, 0, 0}, []int{0, 0, 0}, ladderParams(false))
	assert.Equal(t, []float64{0, 0, 0}, exitLong)
	assert.Empty(t, events)
}

func TestScanLadder_TargetsNeverFireOnEntryCandle(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 98, 200, 95, 100),
		bar(1, 100, 101, 99, 100),
	}
	exitLong, _, events := ScanLadder(bars, nil, []int{1, 0}, []int{0, 0}, ladderParams(false))
	assert.Equal(t, []float64{0, 0}, exitLong)
	assert.Empty(t, events)
}

func TestScanLadder_ShortTiers(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 102, 105, 99, 100),
		bar(1, 100, 101, 95, 96),
		bar(2, 96, 97, 89, 90),
		bar(3, 90, 91, 79, 80),
	}
	exitLong, exitShort, _ := ScanLadder(bars, nil, []int{0, 0, 0, 0}, []int{1, 0, 0, 0}, ladderParams(false))
	assert.Equal(t, []float64{0, 0, 0, 0}, exitLong)
	assert.Equal(t, []float64{0, 0, 0.3, 0.3}, exitShort)
}

func TestScanLadder_FlushIsPerEntry(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 98, 101, 95, 100),
		bar(1, 100, 102, 99, 101),
		bar(2, 101, 103, 99, 102),
	}
	_, _, events := ScanLadder(bars, nil, []int{1, 1, 0}, []int{0, 0, 0}, ladderParams(true))

	flushed := make(map[int]bool)
	for _, ev := range events {
		if ev.Reason == model.ExitEndOfData {
			flushed[ev.EntryIndex] = true
			assert.Equal(t, 2, ev.ExitIndex)
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, flushed)
}

func TestScanLadder_MatchesNestedScan(t *testing.T) {
	bars := randomBars(500, 21)
	ind, err := calculator.Calculate(bars, 10, 3)
	require.NoError(t, err)
	enterLong, _ := GenerateEntries(bars, ind, nil, false)

	want := naiveLadder(bars, enterLong, DefaultTiers)
	got, _, _ := ScanLadder(bars, nil, enterLong, make([]int, len(bars)), ladderParams(false))
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "exit_long[%d]", i)
	}
}
