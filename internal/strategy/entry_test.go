package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

func scenarioBars() []model.OHLCV {
	highs := []float64{1, 2, 3, 5, 4, 3, 2}
	bars := make([]model.OHLCV, len(highs))
	for i, h := range highs {
		bars[i] = bar(i, h-0.2, h, h-0.5, h-0.1)
	}
	return bars
}

func TestGenerateEntries_Breakout(t *testing.T) {
	bars := scenarioBars()
	ind, err := calculator.Calculate(bars, 3, 2)
	require.NoError(t, err)

	long, short := GenerateEntries(bars, ind, nil, true)
	assert.Equal(t, []int{0, 0, 0, 1, 0, 0, 0}, long)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1}, short)
}

func TestGenerateEntries_ZeroVolumeSuppressesEntry(t *testing.T) {
	bars := scenarioBars()
	bars[3].Volume = 0
	ind, err := calculator.Calculate(bars, 3, 2)
	require.NoError(t, err)

	long, _ := GenerateEntries(bars, ind, nil, true)
	assert.Equal(t, 0, long[3])
}

func TestGenerateEntries_ShortDisabled(t *testing.T) {
	bars := scenarioBars()
	ind, err := calculator.Calculate(bars, 3, 2)
	require.NoError(t, err)

	_, short := GenerateEntries(bars, ind, nil, false)
	assert.Equal(t, make([]int, len(bars)), short)
}

func TestGenerateEntries_SkippedCandle(t *testing.T) {
	bars := scenarioBars()
	ind, err := calculator.Calculate(bars, 3, 2)
	require.NoError(t, err)

	skip := make([]bool, len(bars))
	skip[3] = true
	long, _ := GenerateEntries(bars, ind, skip, true)
	assert.Equal(t, 0, long[3])
}

func TestGenerateEntries_ConsecutiveBreakouts(t *testing.T) {
	var bars []model.OHLCV
	for i, h := range []float64{5, 5, 5, 6, 7, 8} {
		bars = append(bars, bar(i, h-0.5, h, h-1, h-0.2))
	}
	ind, err := calculator.Calculate(bars, 3, 2)
	require.NoError(t, err)

	long, _ := GenerateEntries(bars, ind, nil, false)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, long)
}
