package calculator

import (
	"math"

	"BreakoutSentinel/internal/model"
)

// CheckBars flags every candle with a non-finite OHLCV field or a negative volume.
// mask[i] is true for a malformed candle; issues lists the first bad field of each one.
func CheckBars(bars []model.OHLCV) (mask []bool, issues []*model.MalformedCandleError) {
	mask = make([]bool, len(bars))
	for i, b := range bars {
		if err := checkBar(i, b); err != nil {
			mask[i] = true
			issues = append(issues, err)
		}
	}
	return mask, issues
}

func checkBar(i int, b model.OHLCV) *model.MalformedCandleError {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &model.MalformedCandleError{Index: i, Field: f.name, Value: f.value}
		}
	}
	if b.Volume < 0 {
		return &model.MalformedCandleError{Index: i, Field: "volume", Value: b.Volume}
	}
	return nil
}
