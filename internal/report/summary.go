package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"BreakoutSentinel/internal/model"
)

// Summary condenses one run.
type Summary struct {
	Symbol     string
	Bars       int
	EnterLong  int
	EnterShort int
	ExitLong   int
	ExitShort  int
	Malformed  int

	// Holding period in candles over all exit events.
	HoldMean   float64
	HoldMedian float64
	HoldMax    float64
}

// Summarize counts flags and holding periods of res.
func Summarize(res *model.RunResult) Summary {
	s := Summary{
		Symbol:    res.Symbol,
		Bars:      res.Len(),
		Malformed: len(res.Malformed),
	}
	sig := res.Signals
	for i := range sig.EnterLong {
		s.EnterLong += sig.EnterLong[i]
		s.EnterShort += sig.EnterShort[i]
		if sig.ExitLong[i] > 0 {
			s.ExitLong++
		}
		if sig.ExitShort[i] > 0 {
			s.ExitShort++
		}
	}

	holds := make(stats.Float64Data, 0, len(res.Exits))
	for _, ev := range res.Exits {
		holds = append(holds, float64(ev.HoldingBars()))
	}
	if len(holds) > 0 {
		s.HoldMean, _ = stats.Mean(holds)
		s.HoldMedian, _ = stats.Median(holds)
		s.HoldMax, _ = stats.Max(holds)
	}
	return s
}

// RenderSummary writes summaries as a text table.
func RenderSummary(w io.Writer, summaries []Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Bars", "Long in", "Short in", "Long out", "Short out", "Malformed", "Hold mean", "Hold median", "Hold max"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, s := range summaries {
		table.Append([]string{
			s.Symbol,
			fmt.Sprintf("%d", s.Bars),
			fmt.Sprintf("%d", s.EnterLong),
			fmt.Sprintf("%d", s.EnterShort),
			fmt.Sprintf("%d", s.ExitLong),
			fmt.Sprintf("%d", s.ExitShort),
			fmt.Sprintf("%d", s.Malformed),
			fmt.Sprintf("%.1f", s.HoldMean),
			fmt.Sprintf("%.1f", s.HoldMedian),
			fmt.Sprintf("%.0f", s.HoldMax),
		})
	}
	table.Render()
}
