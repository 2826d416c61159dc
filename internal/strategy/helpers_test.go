package strategy

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"BreakoutSentinel/internal/model"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// randomBars builds a seeded random walk with positive volume.
func randomBars(n int, seed int64) []model.OHLCV {
	r := rand.New(rand.NewSource(seed))
	bars := make([]model.OHLCV, n)
	price := 100.0
	for i := range bars {
		open := price
		price += r.NormFloat64() * 1.5
		hi := math.Max(open, price) + r.Float64()
		lo := math.Min(open, price) - r.Float64()
		bars[i] = model.OHLCV{
			Time:   t0.Add(time.Duration(i) * time.Hour),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: 1000 + r.Float64()*100,
		}
	}
	return bars
}

func bar(i int, open, high, low, close float64) model.OHLCV {
	return model.OHLCV{
		Time:   t0.Add(time.Duration(i) * time.Hour),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

// assertSameSeries compares two columns treating NaN cells as equal.
func assertSameSeries(t *testing.T, want, got []float64, name string) {
	t.Helper()
	if !assert.Len(t, got, len(want), name) {
		return
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "%s[%d]: want NaN, got %v", name, i, got[i])
			continue
		}
		assert.Equal(t, want[i], got[i], "%s[%d]", name, i)
	}
}
