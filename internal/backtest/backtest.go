package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/metrics"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/strategy"
)

var log = logrus.WithField("component", "backtest")

// Result is the outcome for one symbol.
type Result struct {
	Symbol  string
	Series  *model.PriceSeries
	Run     *model.RunResult
	Elapsed time.Duration
}

// Runner evaluates symbols independently, at most Parallel at a time.
type Runner struct {
	Collector *collector.Collector
	Engine    *strategy.Engine
	Metrics   *metrics.Metrics
	Parallel  int
}

// Run is a convenience wrapper for a Runner without metrics.
func Run(ctx context.Context, col *collector.Collector, eng *strategy.Engine, symbols []string, parallel int) ([]*Result, error) {
	r := &Runner{Collector: col, Engine: eng, Parallel: parallel}
	return r.Run(ctx, symbols)
}

// Run fetches and evaluates every symbol. Results keep the order of symbols.
// The first failing symbol cancels the rest and its error is returned.
func (r *Runner) Run(ctx context.Context, symbols []string) ([]*Result, error) {
	results := make([]*Result, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	if r.Parallel > 0 {
		g.SetLimit(r.Parallel)
	}
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			res, err := r.RunSymbol(gctx, symbol)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunSymbol fetches one series and runs the engine over it.
func (r *Runner) RunSymbol(ctx context.Context, symbol string) (*Result, error) {
	start := time.Now()
	series, err := r.Collector.Collect(ctx, symbol)
	if err != nil {
		r.Metrics.ObserveRun(symbol, time.Since(start), nil, err)
		return nil, err
	}
	run, err := r.Engine.Run(symbol, series.Interval, series.Bars)
	elapsed := time.Since(start)
	r.Metrics.ObserveRun(symbol, elapsed, run, err)
	if err != nil {
		return nil, err
	}
	log.Infof("%s: %d bars, %d exits, %d malformed in %s",
		symbol, run.Len(), len(run.Exits), len(run.Malformed), elapsed.Round(time.Millisecond))
	return &Result{Symbol: symbol, Series: series, Run: run, Elapsed: elapsed}, nil
}
