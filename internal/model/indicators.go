package model

import "math"

// Indicators holds the derived columns aligned 1:1 with the candle series.
// Undefined cells are NaN.
type Indicators struct {
	HighestHigh  []float64 // max(high) over the previous lookback candles, current excluded
	LowestLow    []float64 // min(low) over the previous lookback candles, current excluded
	TrailingStop []float64 // min(low) over the last trailing_lookback candles, current included
}

// NewIndicators allocates n cells per column, all undefined.
func NewIndicators(n int) *Indicators {
	ind := &Indicators{
		HighestHigh:  make([]float64, n),
		LowestLow:    make([]float64, n),
		TrailingStop: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ind.HighestHigh[i] = math.NaN()
		ind.LowestLow[i] = math.NaN()
		ind.TrailingStop[i] = math.NaN()
	}
	return ind
}

// Len returns the number of candles covered.
func (ind *Indicators) Len() int { return len(ind.HighestHigh) }
