package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"BreakoutSentinel/internal/model"
)

// csvCandleDTO is one row of a candle file.
type csvCandleDTO struct {
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

func (dto *csvCandleDTO) toModel() (model.OHLCV, error) {
	t, err := parseCSVTime(dto.Time)
	if err != nil {
		return model.OHLCV{}, err
	}
	return model.OHLCV{
		Time:   t,
		Open:   dto.Open,
		High:   dto.High,
		Low:    dto.Low,
		Close:  dto.Close,
		Volume: dto.Volume,
	}, nil
}

// CSVFetcher reads bars from <Dir>/<symbol>.csv. The interval is not
// checked against the file; one file holds one interval.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher over a directory of candle files.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

// Path returns the file backing symbol.
func (f *CSVFetcher) Path(symbol string) string {
	return filepath.Join(f.Dir, symbol+".csv")
}

func (f *CSVFetcher) FetchBars(ctx context.Context, symbol, _ string, count int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path(symbol)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles: %w", err)
	}
	defer file.Close()

	var rows []*csvCandleDTO
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		b, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return lastN(bars, count), nil
}
