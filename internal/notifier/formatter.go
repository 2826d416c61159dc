package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/report"
	"BreakoutSentinel/internal/strategy"
)

func level(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

// FormatSignalAlert describes the flags on the latest candle of res.
// It returns "" when that candle carries none.
func FormatSignalAlert(res *model.RunResult) string {
	i := res.LastIndex()
	if i < 0 || !res.Signals.Any(i) {
		return ""
	}
	bar := res.Bars[i]
	sig, ind := res.Signals, res.Indicators

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>%s</b> %s | %s\n\n", html.EscapeString(res.Symbol), res.Interval, bar.Time.UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Close: %s  High: %s  Low: %s\n", level(bar.Close), level(bar.High), level(bar.Low)))
	b.WriteString(fmt.Sprintf("Channel: %s / %s  Trail: %s\n\n", level(ind.HighestHigh[i]), level(ind.LowestLow[i]), level(ind.TrailingStop[i])))

	if sig.EnterLong[i] == 1 {
		b.WriteString("📈 <b>Enter long</b>: high broke the channel top\n")
	}
	if sig.EnterShort[i] == 1 {
		b.WriteString("📉 <b>Enter short</b>: low broke the channel bottom\n")
	}
	for _, ev := range res.Exits {
		if ev.ExitIndex != i {
			continue
		}
		b.WriteString(fmt.Sprintf("🏁 <b>Exit %s</b> %.0f%% at %s (%s, held %d bars)\n",
			strings.ToLower(string(ev.Side)), ev.Portion*100, level(ev.Level), ev.Reason, ev.HoldingBars()))
	}
	return b.String()
}

// FormatScanSummary lists one line per scanned symbol.
func FormatScanSummary(at time.Time, summaries []report.Summary, failed map[string]error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Breakout scan</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("%s: %d bars, in %d/%d, out %d/%d",
			html.EscapeString(s.Symbol), s.Bars, s.EnterLong, s.EnterShort, s.ExitLong, s.ExitShort))
		if s.Malformed > 0 {
			b.WriteString(fmt.Sprintf(", ⚠️ %d malformed", s.Malformed))
		}
		b.WriteString("\n")
	}
	for symbol, err := range failed {
		b.WriteString(fmt.Sprintf("%s: ❌ %s\n", html.EscapeString(symbol), html.EscapeString(err.Error())))
	}
	if len(summaries) == 0 && len(failed) == 0 {
		b.WriteString("No symbols configured.\n")
	}
	return b.String()
}

// FormatParams lists the engine parameters.
func FormatParams(p strategy.Params) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Strategy parameters</b>\n\n")
	b.WriteString(fmt.Sprintf("lookback_period: %d\n", p.Lookback))
	b.WriteString(fmt.Sprintf("trailing_lookback: %d\n", p.TrailingLookback))
	b.WriteString(fmt.Sprintf("can_short: %v\n", p.AllowShort))
	b.WriteString(fmt.Sprintf("startup_candle_count: %d\n", p.StartupCandleCount))
	b.WriteString(fmt.Sprintf("exit_mode: %s\n", p.ExitMode))
	if p.ExitMode == model.ExitModeTiered {
		for _, t := range p.Tiers {
			b.WriteString(fmt.Sprintf("  %.0f%% at %gR\n", t.Portion*100, t.Multiple))
		}
	} else {
		b.WriteString(fmt.Sprintf("ratchet_on_progress: %v\n", p.RatchetOnProgress))
	}
	b.WriteString(fmt.Sprintf("force_exit_at_end: %v\n", p.ForceExitAtEnd))
	return b.String()
}
