package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"BreakoutSentinel/internal/model"
)

// Float is a float64 that writes NaN as an empty CSV cell.
type Float float64

func (f Float) MarshalCSV() (string, error) {
	if math.IsNaN(float64(f)) {
		return "", nil
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 64), nil
}

// Row is one annotated candle.
type Row struct {
	Time         string `csv:"time"`
	Open         Float  `csv:"open"`
	High         Float  `csv:"high"`
	Low          Float  `csv:"low"`
	Close        Float  `csv:"close"`
	Volume       Float  `csv:"volume"`
	HighestHigh  Float  `csv:"highest_high"`
	LowestLow    Float  `csv:"lowest_low"`
	TrailingStop Float  `csv:"trailing_stop"`
	EnterLong    int    `csv:"enter_long"`
	EnterShort   int    `csv:"enter_short"`
	ExitLong     Float  `csv:"exit_long"`
	ExitShort    Float  `csv:"exit_short"`
}

// Rows flattens res into one row per candle.
func Rows(res *model.RunResult) []*Row {
	rows := make([]*Row, res.Len())
	ind, sig := res.Indicators, res.Signals
	for i, b := range res.Bars {
		rows[i] = &Row{
			Time:         b.Time.UTC().Format(time.RFC3339),
			Open:         Float(b.Open),
			High:         Float(b.High),
			Low:          Float(b.Low),
			Close:        Float(b.Close),
			Volume:       Float(b.Volume),
			HighestHigh:  Float(ind.HighestHigh[i]),
			LowestLow:    Float(ind.LowestLow[i]),
			TrailingStop: Float(ind.TrailingStop[i]),
			EnterLong:    sig.EnterLong[i],
			EnterShort:   sig.EnterShort[i],
			ExitLong:     Float(sig.ExitLong[i]),
			ExitShort:    Float(sig.ExitShort[i]),
		}
	}
	return rows
}

// WriteCSV writes the annotated candles of res with a header row.
func WriteCSV(w io.Writer, res *model.RunResult) error {
	rows := Rows(res)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write candles csv: %w", err)
	}
	return nil
}

// ExitRow is one exit event.
type ExitRow struct {
	Side      string `csv:"side"`
	EntryTime string `csv:"entry_time"`
	ExitTime  string `csv:"exit_time"`
	Bars      int    `csv:"bars_held"`
	Portion   Float  `csv:"portion"`
	Level     Float  `csv:"level"`
	Reason    string `csv:"reason"`
}

// WriteExits writes one row per exit event of res.
func WriteExits(w io.Writer, res *model.RunResult) error {
	rows := make([]*ExitRow, 0, len(res.Exits))
	for _, ev := range res.Exits {
		rows = append(rows, &ExitRow{
			Side:      string(ev.Side),
			EntryTime: res.Bars[ev.EntryIndex].Time.UTC().Format(time.RFC3339),
			ExitTime:  res.Bars[ev.ExitIndex].Time.UTC().Format(time.RFC3339),
			Bars:      ev.HoldingBars(),
			Portion:   Float(ev.Portion),
			Level:     Float(ev.Level),
			Reason:    string(ev.Reason),
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write exits csv: %w", err)
	}
	return nil
}
