package collector

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"BreakoutSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With Data unset it generates a random walk seeded by the symbol, so the
// same symbol always yields the same bars.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Err   error
	// End is the time of the last generated bar; zero means 2024-01-01 UTC.
	End time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol, interval string, count int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Data[symbol]; ok {
		out := make([]model.OHLCV, len(bars))
		copy(out, bars)
		return lastN(out, count), nil
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	end := m.End
	if end.IsZero() {
		end = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return generateMockBars(symbol, price, intervalDuration(interval), end, count), nil
}

func intervalDuration(interval string) time.Duration {
	if iv, ok := yahooIntervals[interval]; ok {
		return iv.bar
	}
	return time.Hour
}

func generateMockBars(symbol string, basePrice float64, step time.Duration, end time.Time, count int) []model.OHLCV {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	bars := make([]model.OHLCV, count)
	p := basePrice
	for i := 0; i < count; i++ {
		open := p
		p *= 1 + r.NormFloat64()*0.01
		if p <= 0 {
			p = open
		}
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   math.Max(open, p) * (1 + r.Float64()*0.005),
			Low:    math.Min(open, p) * (1 - r.Float64()*0.005),
			Close:  p,
			Volume: 1000000 * (0.5 + r.Float64()),
		}
	}
	return bars
}
