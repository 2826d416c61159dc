package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"BreakoutSentinel/internal/model"
)

func sampleResult() *model.RunResult {
	sig := model.NewSignals(4)
	sig.EnterLong[1] = 1
	sig.EnterShort[2] = 1
	sig.ExitLong[3] = 0.3
	return &model.RunResult{
		Signals:   sig,
		Malformed: []*model.MalformedCandleError{{Index: 0, Field: "close"}},
	}
}

func TestCountFlags(t *testing.T) {
	assert.Equal(t, map[string]int{
		"enter_long":  1,
		"enter_short": 1,
		"exit_long":   1,
		"exit_short":  0,
		"malformed":   1,
	}, CountFlags(sampleResult()))
}

func TestObserveRun(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun("BTC", 10*time.Millisecond, sampleResult(), nil)
	m.ObserveRun("BTC", time.Millisecond, nil, errors.New("fetch failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("BTC", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("BTC", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signals.WithLabelValues("BTC", "enter_long")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Signals.WithLabelValues("BTC", "exit_short")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveRun("X", time.Second, sampleResult(), nil) })
}
