package model

// Side is the direction of a position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ExitReason indicates what produced an exit flag.
type ExitReason string

const (
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitRewardTier   ExitReason = "REWARD_TIER"
	ExitEndOfData    ExitReason = "END_OF_DATA"
)

// ExitMode selects the exit model. The two modes are mutually exclusive.
type ExitMode string

const (
	ExitModeTrailing ExitMode = "trailing"
	ExitModeTiered   ExitMode = "tiered"
)

// RewardTier is a target at Multiple times the initial risk, exiting Portion of the position.
type RewardTier struct {
	Multiple float64 `yaml:"multiple"`
	Portion  float64 `yaml:"portion"`
}

// Signals holds the flag columns emitted by the strategy.
// Entry cells are 0 or 1; exit cells are accumulated fractions in [0, 1].
type Signals struct {
	EnterLong  []int
	EnterShort []int
	ExitLong   []float64
	ExitShort  []float64
}

// NewSignals allocates zeroed columns for n candles.
func NewSignals(n int) *Signals {
	return &Signals{
		EnterLong:  make([]int, n),
		EnterShort: make([]int, n),
		ExitLong:   make([]float64, n),
		ExitShort:  make([]float64, n),
	}
}

// Any reports whether candle i carries any entry or exit flag.
func (s *Signals) Any(i int) bool {
	return s.EnterLong[i] != 0 || s.EnterShort[i] != 0 || s.ExitLong[i] != 0 || s.ExitShort[i] != 0
}

// ExitEvent explains one nonzero contribution to an exit column.
type ExitEvent struct {
	Side       Side
	EntryIndex int
	ExitIndex  int
	Portion    float64
	Level      float64 // stop level or target price that was crossed
	Reason     ExitReason
}

// HoldingBars returns the number of candles between entry and exit.
func (e ExitEvent) HoldingBars() int { return e.ExitIndex - e.EntryIndex }

// RunResult is the annotated output of one engine run. Every slice is owned by the result.
type RunResult struct {
	Symbol     string
	Interval   string
	Bars       []OHLCV
	Indicators *Indicators
	Signals    *Signals
	Exits      []ExitEvent
	Malformed  []*MalformedCandleError

	// Passed through untouched for the execution host.
	MinimalROI map[string]float64
	Stoploss   *float64
}

// Len returns the number of candles in the run.
func (r *RunResult) Len() int { return len(r.Bars) }

// LastIndex returns the index of the final candle, or -1 when empty.
func (r *RunResult) LastIndex() int { return len(r.Bars) - 1 }
