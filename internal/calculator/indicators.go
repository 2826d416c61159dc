package calculator

import (
	"math"

	"BreakoutSentinel/internal/model"
)

// Calculate computes the breakout channel and the trailing stop column.
//
//	HighestHigh[i]  = max(high[i-lookback .. i-1])             NaN for i < lookback
//	LowestLow[i]    = min(low[i-lookback .. i-1])              NaN for i < lookback
//	TrailingStop[i] = min(low[i-trailingLookback+1 .. i])      NaN for i < trailingLookback-1
//
// The channel never looks at the current candle. Malformed candles are left out of
// every window and get NaN in all three columns.
func Calculate(bars []model.OHLCV, lookback, trailingLookback int) (*model.Indicators, error) {
	if lookback < 1 {
		return nil, &model.InvalidParameterError{Param: "lookback_period", Value: lookback, Reason: "must be positive"}
	}
	if trailingLookback < 1 {
		return nil, &model.InvalidParameterError{Param: "trailing_lookback", Value: trailingLookback, Reason: "must be positive"}
	}
	if len(bars) < lookback {
		return nil, &model.InsufficientDataError{Have: len(bars), Need: lookback}
	}

	mask, _ := CheckBars(bars)
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	ind := &model.Indicators{
		HighestHigh:  Shift(RollingMax(highs, lookback, mask), 1),
		LowestLow:    Shift(RollingMin(lows, lookback, mask), 1),
		TrailingStop: RollingMin(lows, trailingLookback, mask),
	}
	for i, bad := range mask {
		if bad {
			ind.HighestHigh[i] = math.NaN()
			ind.LowestLow[i] = math.NaN()
			ind.TrailingStop[i] = math.NaN()
		}
	}
	return ind, nil
}
