package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"BreakoutSentinel/internal/model"
)

var log = logrus.WithField("component", "collector")

// Collector fetches candle series for one interval and length.
type Collector struct {
	Fetcher  Fetcher
	Interval string
	Bars     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, interval string, bars int) *Collector {
	return &Collector{Fetcher: fetcher, Interval: interval, Bars: bars}
}

// Collect fetches the latest series for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchBars(ctx, symbol, c.Interval, c.Bars)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars for %s: %w", c.Interval, symbol, err)
	}
	if len(bars) < c.Bars {
		log.Warnf("%s: %s returned %d bars, requested %d", symbol, c.Fetcher.Name(), len(bars), c.Bars)
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Interval:  c.Interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}
