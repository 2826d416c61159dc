package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"BreakoutSentinel/internal/backtest"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/config"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/recorder"
	"BreakoutSentinel/internal/report"
	"BreakoutSentinel/internal/strategy"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the breakout strategy over historical candles",
	Long: `Fetches candles for each symbol, runs the breakout strategy and writes
the annotated candles and exit events as CSV, followed by a summary table.`,
	RunE: run,
}

func run(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("symbols"); v != "" {
		cfg.DataSource.Symbols = strings.Split(v, ",")
	}
	if v, _ := cmd.Flags().GetString("csv-dir"); v != "" {
		cfg.DataSource.Provider = config.ProviderCSV
		cfg.DataSource.CSVDir = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Backtest.OutputDir = v
	}
	if v, _ := cmd.Flags().GetInt("parallel"); v > 0 {
		cfg.Backtest.Parallel = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.CSVDir, cfg.Proxy)
	if err != nil {
		return err
	}
	params := cfg.Params()
	eng, err := strategy.NewEngine(params)
	if err != nil {
		return err
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Interval, cfg.DataSource.Bars)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	log.Infof("backtesting %d symbols from %s, exit mode %s", len(cfg.DataSource.Symbols), fetcher.Name(), params.ExitMode)
	results, err := backtest.Run(ctx, col, eng, cfg.DataSource.Symbols, cfg.Backtest.Parallel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Backtest.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	summaries := make([]report.Summary, 0, len(results))
	for _, res := range results {
		if err := writeResult(cfg.Backtest.OutputDir, res.Run); err != nil {
			return err
		}
		summaries = append(summaries, report.Summarize(res.Run))
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		if err := recordResults(cfg.Database.SQLitePath, params, results, started); err != nil {
			return err
		}
	}

	report.RenderSummary(cmd.OutOrStdout(), summaries)
	log.Infof("wrote %d reports to %s", len(results), cfg.Backtest.OutputDir)
	return nil
}

func writeResult(dir string, res *model.RunResult) error {
	name := strings.NewReplacer("/", "_", "^", "").Replace(res.Symbol)
	if err := writeFile(filepath.Join(dir, name+".csv"), func(f *os.File) error { return report.WriteCSV(f, res) }); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, name+"_exits.csv"), func(f *os.File) error { return report.WriteExits(f, res) })
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordResults(path string, params strategy.Params, results []*backtest.Result, started time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	rec, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		return err
	}
	defer rec.Close()
	for _, res := range results {
		if err := rec.RecordRun(recorder.NewRunRecord("backtest", params, res.Run, started, res.Elapsed)); err != nil {
			return fmt.Errorf("record %s: %w", res.Symbol, err)
		}
	}
	return nil
}

func main() {
	rootCmd.Flags().StringP("config", "c", "configs/config.yaml", "Path to the YAML config file.")
	rootCmd.Flags().StringP("symbols", "s", "", "Comma separated symbols, overriding data_source.symbols.")
	rootCmd.Flags().String("csv-dir", "", "Read candles from <dir>/<symbol>.csv instead of the configured provider.")
	rootCmd.Flags().StringP("out", "o", "", "Directory for the CSV reports, overriding backtest.output_dir.")
	rootCmd.Flags().IntP("parallel", "p", 0, "Symbols evaluated concurrently, overriding backtest.parallel.")
	rootCmd.Flags().Bool("record", false, "Also store the runs in the SQLite database.")

	cobra.CheckErr(rootCmd.Execute())
}
