package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"BreakoutSentinel/internal/backtest"
	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/recorder"
	"BreakoutSentinel/internal/report"
)

var log = logrus.WithField("component", "scheduler")

// Notifier delivers messages to the operator.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// ScanResult is the outcome of one scan over all symbols.
type ScanResult struct {
	At        time.Time
	Summaries []report.Summary
	Failed    map[string]error
	Alerts    int
}

// Scheduler manages the cron scan and answers operator commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *backtest.Runner
	Symbols  []string
	Notifier Notifier
	Recorder recorder.Recorder
	Ctx      context.Context

	// StateFile persists alerted candles; empty keeps them in memory only.
	StateFile string

	mu       sync.Mutex
	last     *ScanResult
	alerted  map[string]time.Time // latest candle already alerted, per symbol
	scanning sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *backtest.Runner, symbols []string, n Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Symbols:  symbols,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		alerted:  make(map[string]time.Time),
	}
}

// LoadState restores alerted candles from StateFile.
func (s *Scheduler) LoadState() error {
	if s.StateFile == "" {
		return nil
	}
	state, err := LoadAlertState(s.StateFile)
	if err != nil {
		return fmt.Errorf("load alert state: %w", err)
	}
	s.mu.Lock()
	s.alerted = state.Alerted
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) saveState() {
	if s.StateFile == "" {
		return
	}
	s.mu.Lock()
	state := &AlertState{Alerted: make(map[string]time.Time, len(s.alerted))}
	for k, v := range s.alerted {
		state.Alerted[k] = v
	}
	s.mu.Unlock()
	if err := SaveAlertState(s.StateFile, state); err != nil {
		log.Errorf("save alert state: %v", err)
	}
}

// RegisterAll registers the periodic scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunScanNow executes the scan immediately (schedule.run_on_start).
func (s *Scheduler) RunScanNow() *ScanResult {
	return s.Scan()
}

// LastScan returns the most recent scan, or nil before the first one.
func (s *Scheduler) LastScan() *ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) scanTask() {
	log.Info("running scan task")
	res := s.Scan()
	if len(res.Failed) > 0 && len(res.Summaries) == 0 {
		s.trySend(notifier.FormatScanSummary(res.At, nil, res.Failed))
	}
}

// Scan runs every symbol, records each run and alerts on flags at the latest
// candle. A failing symbol does not stop the others.
func (s *Scheduler) Scan() *ScanResult {
	s.scanning.Lock()
	defer s.scanning.Unlock()

	res := &ScanResult{At: time.Now(), Failed: make(map[string]error)}
	outs := make([]*backtest.Result, len(s.Symbols))

	var mu sync.Mutex
	g := new(errgroup.Group)
	if s.Runner.Parallel > 0 {
		g.SetLimit(s.Runner.Parallel)
	}
	for i, symbol := range s.Symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			out, err := s.Runner.RunSymbol(s.Ctx, symbol)
			if err != nil {
				log.Errorf("scan %s: %v", symbol, err)
				mu.Lock()
				res.Failed[symbol] = err
				mu.Unlock()
				return nil
			}
			outs[i] = out
			return nil
		})
	}
	_ = g.Wait()

	params := s.Runner.Engine.Params()
	for _, out := range outs {
		if out == nil {
			continue
		}
		res.Summaries = append(res.Summaries, report.Summarize(out.Run))

		rec := recorder.NewRunRecord("scan", params, out.Run, res.At, out.Elapsed)
		if err := s.Recorder.RecordRun(rec); err != nil {
			log.Errorf("record run %s: %v", out.Symbol, err)
		}

		if s.shouldAlert(out) {
			if msg := notifier.FormatSignalAlert(out.Run); msg != "" {
				s.trySend(msg)
				res.Alerts++
			}
		}
	}

	if res.Alerts > 0 {
		s.saveState()
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res
}

// shouldAlert reports whether the latest candle of out is new since the last alert.
func (s *Scheduler) shouldAlert(out *backtest.Result) bool {
	run := out.Run
	i := run.LastIndex()
	if i < 0 || !run.Signals.Any(i) {
		return false
	}
	t := run.Bars[i].Time
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.alerted[out.Symbol]; ok && !t.After(prev) {
		return false
	}
	s.alerted[out.Symbol] = t
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		res := s.Scan()
		return notifier.FormatScanSummary(res.At, res.Summaries, res.Failed)
	case "/status":
		last := s.LastScan()
		if last == nil {
			return "No scan has run yet."
		}
		return notifier.FormatScanSummary(last.At, last.Summaries, last.Failed)
	case "/params":
		return notifier.FormatParams(s.Runner.Engine.Params())
	default:
		return "Commands:\n• /scan run a scan now\n• /status last scan summary\n• /params strategy parameters"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Errorf("send notification: %v", err)
	}
}
