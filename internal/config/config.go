package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Strategy   StrategyConfig `yaml:"strategy"`
	DataSource struct {
		Provider string   `yaml:"provider"`
		CSVDir   string   `yaml:"csv_dir"`
		Symbols  []string `yaml:"symbols"`
		Interval string   `yaml:"interval"`
		Bars     int      `yaml:"bars"`
	} `yaml:"data_source"`
	Schedule struct {
		ScanCron   string `yaml:"scan_cron"`
		StateFile  string `yaml:"state_file"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Backtest struct {
		Parallel  int    `yaml:"parallel"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"backtest"`
	Proxy string `yaml:"proxy"`
}

// StrategyConfig is the yaml form of strategy.Params. Pointer fields tell
// "unset" apart from an explicit zero or false.
type StrategyConfig struct {
	LookbackPeriod     int                `yaml:"lookback_period"`
	TrailingLookback   int                `yaml:"trailing_lookback"`
	CanShort           *bool              `yaml:"can_short"`
	StartupCandleCount *int               `yaml:"startup_candle_count"`
	ExitMode           string             `yaml:"exit_mode"`
	ForceExitAtEnd     bool               `yaml:"force_exit_at_end"`
	RatchetOnProgress  bool               `yaml:"ratchet_on_progress"`
	RewardTiers        []model.RewardTier `yaml:"reward_tiers"`
	MinimalROI         map[string]float64 `yaml:"minimal_roi"`
	Stoploss           *float64           `yaml:"stoploss"`
}

// Provider names accepted in data_source.provider.
const (
	ProviderYahoo = "yahoo"
	ProviderCSV   = "csv"
	ProviderMock  = "mock"
)

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file in the working directory, when present, is loaded into the
// environment first; variables already set are not overwritten.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Schedule.ScanCron = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.DataSource.Symbols = splitList(v)
	}
	if v := os.Getenv("EXIT_MODE"); v != "" {
		c.Strategy.ExitMode = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("LOOKBACK_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse LOOKBACK_PERIOD: %w", err)
		}
		c.Strategy.LookbackPeriod = n
	}
	if v := os.Getenv("TRAILING_LOOKBACK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TRAILING_LOOKBACK: %w", err)
		}
		c.Strategy.TrailingLookback = n
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	if v := os.Getenv("CAN_SHORT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse CAN_SHORT: %w", err)
		}
		c.Strategy.CanShort = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Strategy.LookbackPeriod == 0 {
		c.Strategy.LookbackPeriod = strategy.DefaultLookback
	}
	if c.Strategy.TrailingLookback == 0 {
		c.Strategy.TrailingLookback = strategy.DefaultTrailingLookback
	}
	if c.Strategy.ExitMode == "" {
		c.Strategy.ExitMode = string(model.ExitModeTrailing)
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data/candles"
	}
	if len(c.DataSource.Symbols) == 0 {
		c.DataSource.Symbols = []string{"BTC-USD"}
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1h"
	}
	if c.DataSource.Bars == 0 {
		c.DataSource.Bars = 500
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 5 * * * *"
	}
	if c.Schedule.StateFile == "" {
		c.Schedule.StateFile = "data/scan_state.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/breakout_sentinel.db"
	}
	if c.Backtest.Parallel == 0 {
		c.Backtest.Parallel = 4
	}
	if c.Backtest.OutputDir == "" {
		c.Backtest.OutputDir = "out"
	}
}

// Params maps the strategy section onto engine parameters.
func (c *Config) Params() strategy.Params {
	p := strategy.DefaultParams()
	s := c.Strategy
	p.Lookback = s.LookbackPeriod
	p.TrailingLookback = s.TrailingLookback
	if s.CanShort != nil {
		p.AllowShort = *s.CanShort
	}
	if s.StartupCandleCount != nil {
		p.StartupCandleCount = *s.StartupCandleCount
	}
	p.ExitMode = model.ExitMode(s.ExitMode)
	if len(s.RewardTiers) > 0 {
		p.Tiers = s.RewardTiers
	}
	p.ForceExitAtEnd = s.ForceExitAtEnd
	p.RatchetOnProgress = s.RatchetOnProgress
	p.MinimalROI = s.MinimalROI
	p.Stoploss = s.Stoploss
	return p
}

// Validate checks the strategy parameters and the data source. Parameter
// problems come back as *model.InvalidParameterError.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderCSV, ProviderMock:
	default:
		return &model.InvalidParameterError{Param: "data_source.provider", Value: c.DataSource.Provider, Reason: "must be yahoo, csv or mock"}
	}
	if c.DataSource.Bars < 1 {
		return &model.InvalidParameterError{Param: "data_source.bars", Value: c.DataSource.Bars, Reason: "must be positive"}
	}
	if c.Backtest.Parallel < 1 {
		return &model.InvalidParameterError{Param: "backtest.parallel", Value: c.Backtest.Parallel, Reason: "must be positive"}
	}
	return nil
}

// ValidateTelegram checks the fields the daemon needs to talk to Telegram.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
