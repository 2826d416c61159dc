package strategy

import (
	"github.com/sirupsen/logrus"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

var log = logrus.WithField("component", "strategy")

// Engine runs the breakout strategy over a candle series.
// An Engine holds no run state and may be shared by concurrent runs.
type Engine struct {
	params Params
}

// NewEngine validates p and returns an engine for it.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: p}, nil
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params { return e.params }

// Run computes indicators, entries and exits for bars. The caller's slice is not modified.
//
// Malformed candles do not abort the run: they are reported in RunResult.Malformed,
// their indicator cells are NaN and they carry no flags.
func (e *Engine) Run(symbol, interval string, bars []model.OHLCV) (*model.RunResult, error) {
	p := e.params
	if need := p.RequiredCandles(); len(bars) < need {
		return nil, &model.InsufficientDataError{Have: len(bars), Need: need}
	}

	owned := make([]model.OHLCV, len(bars))
	copy(owned, bars)

	skip, issues := calculator.CheckBars(owned)
	for _, issue := range issues {
		log.Warnf("%s: %v, signals suppressed", symbol, issue)
	}

	ind, err := calculator.Calculate(owned, p.Lookback, p.TrailingLookback)
	if err != nil {
		return nil, err
	}

	sig := model.NewSignals(len(owned))
	sig.EnterLong, sig.EnterShort = GenerateEntries(owned, ind, skip, p.AllowShort)

	var exits []model.ExitEvent
	switch p.ExitMode {
	case model.ExitModeTiered:
		sig.ExitLong, sig.ExitShort, exits = ScanLadder(owned, skip, sig.EnterLong, sig.EnterShort, p)
	default:
		sig.ExitLong, sig.ExitShort, exits = ScanTrailing(owned, ind, skip, sig.EnterLong, sig.EnterShort, p)
	}

	return &model.RunResult{
		Symbol:     symbol,
		Interval:   interval,
		Bars:       owned,
		Indicators: ind,
		Signals:    sig,
		Exits:      exits,
		Malformed:  issues,
		MinimalROI: p.MinimalROI,
		Stoploss:   p.Stoploss,
	}, nil
}
