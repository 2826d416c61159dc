package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"BreakoutSentinel/internal/model"
)

// Run outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Signals  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_runs_total",
			Help: "Strategy runs by symbol and outcome.",
		}, []string{"symbol", "status"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_signals_total",
			Help: "Candles carrying a flag, by symbol and flag kind.",
		}, []string{"symbol", "kind"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breakout_run_duration_seconds",
			Help:    "Wall time of one fetch and strategy run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"symbol"}),
	}
	reg.MustRegister(m.Runs, m.Signals, m.Duration)
	return m
}

// ObserveRun records one run. res is ignored when err is set.
func (m *Metrics) ObserveRun(symbol string, elapsed time.Duration, res *model.RunResult, err error) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(symbol).Observe(elapsed.Seconds())
	if err != nil {
		m.Runs.WithLabelValues(symbol, StatusError).Inc()
		return
	}
	m.Runs.WithLabelValues(symbol, StatusOK).Inc()

	for kind, n := range CountFlags(res) {
		m.Signals.WithLabelValues(symbol, kind).Add(float64(n))
	}
}

// CountFlags counts the candles carrying each flag kind in res.
func CountFlags(res *model.RunResult) map[string]int {
	counts := map[string]int{
		"enter_long":  0,
		"enter_short": 0,
		"exit_long":   0,
		"exit_short":  0,
		"malformed":   len(res.Malformed),
	}
	sig := res.Signals
	for i := range sig.EnterLong {
		counts["enter_long"] += sig.EnterLong[i]
		counts["enter_short"] += sig.EnterShort[i]
		if sig.ExitLong[i] > 0 {
			counts["exit_long"]++
		}
		if sig.ExitShort[i] > 0 {
			counts["exit_short"]++
		}
	}
	return counts
}
