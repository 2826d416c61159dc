package collector

import (
	"context"
	"fmt"

	"BreakoutSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to count of the most recent bars for symbol at the
	// given interval, oldest first.
	FetchBars(ctx context.Context, symbol, interval string, count int) ([]model.OHLCV, error)
	Name() string
}

// lastN trims bars to its count most recent entries.
func lastN(bars []model.OHLCV, count int) []model.OHLCV {
	if count > 0 && len(bars) > count {
		return bars[len(bars)-count:]
	}
	return bars
}

// NewFetcher builds the fetcher named by provider: "yahoo", "csv" or "mock".
func NewFetcher(provider, csvDir, proxyURL string) (Fetcher, error) {
	switch provider {
	case "yahoo":
		return NewYahooFetcher(proxyURL), nil
	case "csv":
		return NewCSVFetcher(csvDir), nil
	case "mock":
		return &MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", provider)
	}
}
