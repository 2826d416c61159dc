package strategy

import (
	"fmt"

	"BreakoutSentinel/internal/model"
)

// Declared parameter ranges.
const (
	LookbackMin     = 10
	LookbackMax     = 30
	DefaultLookback = 20

	TrailingLookbackMin     = 2
	TrailingLookbackMax     = 5
	DefaultTrailingLookback = 3

	DefaultStartupCandleCount = 20

	// tolerance for the tier portion sum
	portionEpsilon = 1e-9
)

// DefaultTiers is the ladder used when none is configured: 30% at 2R, 30% at 4R, 40% at 10R.
var DefaultTiers = []model.RewardTier{
	{Multiple: 2, Portion: 0.3},
	{Multiple: 4, Portion: 0.3},
	{Multiple: 10, Portion: 0.4},
}

// Params configures one engine.
type Params struct {
	Lookback           int
	TrailingLookback   int
	AllowShort         bool
	StartupCandleCount int

	ExitMode          model.ExitMode
	Tiers             []model.RewardTier
	ForceExitAtEnd    bool
	RatchetOnProgress bool

	// Not used by the engine; carried into every RunResult.
	MinimalROI map[string]float64
	Stoploss   *float64
}

// DefaultParams returns the stock breakout configuration.
func DefaultParams() Params {
	tiers := make([]model.RewardTier, len(DefaultTiers))
	copy(tiers, DefaultTiers)
	return Params{
		Lookback:           DefaultLookback,
		TrailingLookback:   DefaultTrailingLookback,
		AllowShort:         true,
		StartupCandleCount: DefaultStartupCandleCount,
		ExitMode:           model.ExitModeTrailing,
		Tiers:              tiers,
	}
}

// RequiredCandles is the minimum series length a run accepts.
func (p Params) RequiredCandles() int {
	if p.StartupCandleCount > p.Lookback {
		return p.StartupCandleCount
	}
	return p.Lookback
}

// Validate checks every parameter against its declared range.
func (p Params) Validate() error {
	if p.Lookback < LookbackMin || p.Lookback > LookbackMax {
		return &model.InvalidParameterError{
			Param:  "lookback_period",
			Value:  p.Lookback,
			Reason: fmt.Sprintf("must be within [%d, %d]", LookbackMin, LookbackMax),
		}
	}
	if p.TrailingLookback < TrailingLookbackMin || p.TrailingLookback > TrailingLookbackMax {
		return &model.InvalidParameterError{
			Param:  "trailing_lookback",
			Value:  p.TrailingLookback,
			Reason: fmt.Sprintf("must be within [%d, %d]", TrailingLookbackMin, TrailingLookbackMax),
		}
	}
	if p.StartupCandleCount < 0 {
		return &model.InvalidParameterError{Param: "startup_candle_count", Value: p.StartupCandleCount, Reason: "must not be negative"}
	}
	switch p.ExitMode {
	case model.ExitModeTrailing:
	case model.ExitModeTiered:
		return ValidateTiers(p.Tiers)
	default:
		return &model.InvalidParameterError{Param: "exit_mode", Value: p.ExitMode, Reason: "must be trailing or tiered"}
	}
	return nil
}

// ValidateTiers checks a reward ladder: positive multiples, portions in (0, 1], total <= 1.
func ValidateTiers(tiers []model.RewardTier) error {
	if len(tiers) == 0 {
		return &model.InvalidParameterError{Param: "reward_tiers", Value: tiers, Reason: "at least one tier is required"}
	}
	total := 0.0
	for i, t := range tiers {
		if t.Multiple <= 0 {
			return &model.InvalidParameterError{
				Param:  fmt.Sprintf("reward_tiers[%d].multiple", i),
				Value:  t.Multiple,
				Reason: "must be positive",
			}
		}
		if t.Portion <= 0 || t.Portion > 1 {
			return &model.InvalidParameterError{
				Param:  fmt.Sprintf("reward_tiers[%d].portion", i),
				Value:  t.Portion,
				Reason: "must be within (0, 1]",
			}
		}
		total += t.Portion
	}
	if total > 1+portionEpsilon {
		return &model.InvalidParameterError{Param: "reward_tiers", Value: total, Reason: "portions must sum to at most 1.0"}
	}
	return nil
}
