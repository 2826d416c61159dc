package strategy

import (
	"math"

	"BreakoutSentinel/internal/model"
)

// State of a trailing-stop machine.
type State int

const (
	StateIdle State = iota
	StateTracking
)

func (s State) String() string {
	if s == StateTracking {
		return "TRACKING"
	}
	return "IDLE"
}

// TrailingStop tracks the stop level of the open position in one direction.
// A long stop only rises and fires when a low trades below it; a short stop only
// falls and fires when a high trades above it.
type TrailingStop struct {
	side              model.Side
	ratchetOnProgress bool

	state      State
	level      float64
	entryIndex int
	// previous candle's low (long) or high (short), used by ratchetOnProgress
	prevExtreme float64
}

// NewTrailingStop returns an idle machine for side.
// With ratchetOnProgress the level only moves on candles that extend the move:
// a higher low for longs, a lower high for shorts.
func NewTrailingStop(side model.Side, ratchetOnProgress bool) *TrailingStop {
	return &TrailingStop{side: side, ratchetOnProgress: ratchetOnProgress, entryIndex: -1}
}

func (t *TrailingStop) State() State    { return t.state }
func (t *TrailingStop) Level() float64  { return t.level }
func (t *TrailingStop) EntryIndex() int { return t.entryIndex }

// Arm starts tracking at level for an entry on candle i, replacing any level being tracked.
// An undefined level leaves the machine untouched and returns false.
func (t *TrailingStop) Arm(i int, level float64, c model.OHLCV) bool {
	if math.IsNaN(level) {
		return false
	}
	t.state = StateTracking
	t.level = level
	t.entryIndex = i
	t.prevExtreme = t.extreme(c)
	return true
}

// Step advances the machine over candle i. ref is the candidate level for this candle
// (the trailing-stop column for longs, the highest-high column for shorts).
// It returns the exit event when the stop is breached; the machine is then idle again.
func (t *TrailingStop) Step(i int, c model.OHLCV, ref float64) (model.ExitEvent, bool) {
	if t.state != StateTracking {
		return model.ExitEvent{}, false
	}

	progressed := true
	if t.ratchetOnProgress {
		progressed = t.improves(t.extreme(c), t.prevExtreme)
		t.prevExtreme = t.extreme(c)
	}
	if progressed && !math.IsNaN(ref) && t.improves(ref, t.level) {
		t.level = ref
	}

	if !t.breached(c) {
		return model.ExitEvent{}, false
	}
	return t.close(i, model.ExitTrailingStop), true
}

// Flush closes a position still being tracked, used for the end-of-data policy.
func (t *TrailingStop) Flush(i int) (model.ExitEvent, bool) {
	if t.state != StateTracking {
		return model.ExitEvent{}, false
	}
	return t.close(i, model.ExitEndOfData), true
}

func (t *TrailingStop) close(i int, reason model.ExitReason) model.ExitEvent {
	ev := model.ExitEvent{
		Side:       t.side,
		EntryIndex: t.entryIndex,
		ExitIndex:  i,
		Portion:    1.0,
		Level:      t.level,
		Reason:     reason,
	}
	t.state = StateIdle
	t.level = 0
	t.entryIndex = -1
	return ev
}

// improves reports whether a is a more protective level than b for this side.
func (t *TrailingStop) improves(a, b float64) bool {
	if t.side == model.SideShort {
		return a < b
	}
	return a > b
}

func (t *TrailingStop) extreme(c model.OHLCV) float64 {
	if t.side == model.SideShort {
		return c.High
	}
	return c.Low
}

func (t *TrailingStop) breached(c model.OHLCV) bool {
	if t.side == model.SideShort {
		return c.High > t.level
	}
	return c.Low < t.level
}

// ScanTrailing runs one long and one short machine over the series in a single pass
// and returns the exit columns together with the events behind them.
func ScanTrailing(bars []model.OHLCV, ind *model.Indicators, skip []bool, enterLong, enterShort []int, p Params) (exitLong, exitShort []float64, events []model.ExitEvent) {
	n := len(bars)
	exitLong = make([]float64, n)
	exitShort = make([]float64, n)

	long := NewTrailingStop(model.SideLong, p.RatchetOnProgress)
	short := NewTrailingStop(model.SideShort, p.RatchetOnProgress)

	for i, c := range bars {
		if skip != nil && skip[i] {
			continue
		}

		if enterLong[i] == 1 {
			long.Arm(i, ind.TrailingStop[i], c)
		}
		if ev, ok := long.Step(i, c, ind.TrailingStop[i]); ok {
			exitLong[i] = 1.0
			events = append(events, ev)
		}

		if enterShort[i] == 1 {
			short.Arm(i, ind.HighestHigh[i], c)
		}
		if ev, ok := short.Step(i, c, ind.HighestHigh[i]); ok {
			exitShort[i] = 1.0
			events = append(events, ev)
		}
	}

	if p.ForceExitAtEnd && n > 0 {
		last := n - 1
		if ev, ok := long.Flush(last); ok {
			exitLong[last] = 1.0
			events = append(events, ev)
		}
		if ev, ok := short.Flush(last); ok {
			exitShort[last] = 1.0
			events = append(events, ev)
		}
	}
	return exitLong, exitShort, events
}
