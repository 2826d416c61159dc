package strategy

import "BreakoutSentinel/internal/model"

// GenerateEntries evaluates the breakout condition candle by candle.
//
//	enterLong[i]  = 1 when high[i] > HighestHigh[i] and volume[i] > 0
//	enterShort[i] = 1 when low[i]  < LowestLow[i]   and volume[i] > 0 (only if allowShort)
//
// Comparisons against NaN are false, so undefined indicator cells never fire.
// Candles marked in skip never fire either.
func GenerateEntries(bars []model.OHLCV, ind *model.Indicators, skip []bool, allowShort bool) (enterLong, enterShort []int) {
	enterLong = make([]int, len(bars))
	enterShort = make([]int, len(bars))
	for i, b := range bars {
		if skip != nil && skip[i] {
			continue
		}
		if b.Volume <= 0 {
			continue
		}
		if b.High > ind.HighestHigh[i] {
			enterLong[i] = 1
		}
		if allowShort && b.Low < ind.LowestLow[i] {
			enterShort[i] = 1
		}
	}
	return enterLong, enterShort
}
