package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	App struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`
	Trend struct {
		WindowDays  int     `yaml:"window_days"`
		TrendFactor float64 `yaml:"trend_factor"`
		MinMentions int     `yaml:"min_mentions"`
	} `yaml:"trend"`
	Mapping struct {
		SeedFile     string  `yaml:"seed_file"`
		LearningRate float64 `yaml:"learning_rate"`
		DecayFactor  float64 `yaml:"decay_factor"`
		DecayFloor   float64 `yaml:"decay_floor"`
	} `yaml:"mapping"`
	Strategy struct {
		BuyThreshold  float64 `yaml:"buy_threshold"`
		SellThreshold float64 `yaml:"sell_threshold"`
		MinMentions   int     `yaml:"min_mentions"`
		MaxSignals    int     `yaml:"max_signals"`
	} `yaml:"strategy"`
	Risk struct {
		StateFile           string  `yaml:"state_file"`
		MaxTradesPerDay     int     `yaml:"max_trades_per_day"`
		DailyLossLimit      float64 `yaml:"daily_loss_limit"`
		MaxSingleTradeRatio float64 `yaml:"max_single_trade_ratio"`
		MaxHoldingRatio     float64 `yaml:"max_holding_ratio"`
		StopLossRate        float64 `yaml:"stop_loss_rate"`
		TakeProfitRate      float64 `yaml:"take_profit_rate"`
		SplitCount          int     `yaml:"split_count"`
	} `yaml:"risk"`
	Executor struct {
		MaxRetries   int     `yaml:"max_retries"`
		CycleTimeout int     `yaml:"cycle_timeout_sec"`
		PaperCash    float64 `yaml:"paper_cash"`
	} `yaml:"executor"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Slack struct {
		WebhookURL string `yaml:"webhook_url"`
		Enabled    bool   `yaml:"enabled"`
	} `yaml:"slack"`
	Schedule struct {
		MorningCron   string   `yaml:"morning_cron"`
		IntradayCrons []string `yaml:"intraday_crons"`
		ReportCron    string   `yaml:"report_cron"`
		ResetCron     string   `yaml:"reset_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("RISK_STATE_FILE"); v != "" {
		cfg.Risk.StateFile = v
	}
	if v := os.Getenv("SEED_FILE"); v != "" {
		cfg.Mapping.SeedFile = v
	}
	if v := os.Getenv("MAX_TRADES_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Risk.MaxTradesPerDay = n
		}
	}
	if v := os.Getenv("DAILY_LOSS_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.DailyLossLimit = f
		}
	}
	if v := os.Getenv("PAPER_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Executor.PaperCash = f
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Trend.WindowDays == 0 {
		cfg.Trend.WindowDays = 7
	}
	if cfg.Trend.TrendFactor == 0 {
		cfg.Trend.TrendFactor = 2.0
	}
	if cfg.Trend.MinMentions == 0 {
		cfg.Trend.MinMentions = 3
	}
	if cfg.Mapping.SeedFile == "" {
		cfg.Mapping.SeedFile = "configs/keywords.yaml"
	}
	if cfg.Mapping.LearningRate == 0 {
		cfg.Mapping.LearningRate = 0.3
	}
	if cfg.Mapping.DecayFactor == 0 {
		cfg.Mapping.DecayFactor = 0.9
	}
	if cfg.Mapping.DecayFloor == 0 {
		cfg.Mapping.DecayFloor = 0.1
	}
	if cfg.Strategy.BuyThreshold == 0 {
		cfg.Strategy.BuyThreshold = 0.3
	}
	if cfg.Strategy.SellThreshold == 0 {
		cfg.Strategy.SellThreshold = -0.2
	}
	if cfg.Strategy.MinMentions == 0 {
		cfg.Strategy.MinMentions = 3
	}
	if cfg.Strategy.MaxSignals == 0 {
		cfg.Strategy.MaxSignals = 5
	}
	if cfg.Risk.StateFile == "" {
		cfg.Risk.StateFile = "data/risk_state.json"
	}
	if cfg.Risk.MaxTradesPerDay == 0 {
		cfg.Risk.MaxTradesPerDay = 10
	}
	if cfg.Risk.DailyLossLimit == 0 {
		cfg.Risk.DailyLossLimit = -0.03
	}
	if cfg.Risk.MaxSingleTradeRatio == 0 {
		cfg.Risk.MaxSingleTradeRatio = 0.1
	}
	if cfg.Risk.MaxHoldingRatio == 0 {
		cfg.Risk.MaxHoldingRatio = 0.2
	}
	if cfg.Risk.StopLossRate == 0 {
		cfg.Risk.StopLossRate = -0.05
	}
	if cfg.Risk.TakeProfitRate == 0 {
		cfg.Risk.TakeProfitRate = 0.10
	}
	if cfg.Risk.SplitCount == 0 {
		cfg.Risk.SplitCount = 3
	}
	if cfg.Executor.MaxRetries == 0 {
		cfg.Executor.MaxRetries = 3
	}
	if cfg.Executor.CycleTimeout == 0 {
		cfg.Executor.CycleTimeout = 300
	}
	if cfg.Executor.PaperCash == 0 {
		cfg.Executor.PaperCash = 10_000_000
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/news_sentinel.db"
	}
	if cfg.Schedule.MorningCron == "" {
		cfg.Schedule.MorningCron = "0 30 8 * * 1-5"
	}
	if len(cfg.Schedule.IntradayCrons) == 0 {
		cfg.Schedule.IntradayCrons = []string{"0 0 11 * * 1-5", "0 0 14 * * 1-5"}
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 0 16 * * 1-5"
	}
	if cfg.Schedule.ResetCron == "" {
		cfg.Schedule.ResetCron = "0 50 8 * * 1-5"
	}
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.Trend.TrendFactor <= 1 {
		return fmt.Errorf("trend.trend_factor must be > 1")
	}
	if c.Mapping.LearningRate <= 0 || c.Mapping.LearningRate > 1 {
		return fmt.Errorf("mapping.learning_rate must be in (0, 1]")
	}
	if c.Mapping.DecayFactor <= 0 || c.Mapping.DecayFactor >= 1 {
		return fmt.Errorf("mapping.decay_factor must be in (0, 1)")
	}
	if c.Strategy.BuyThreshold <= c.Strategy.SellThreshold {
		return fmt.Errorf("strategy.buy_threshold must exceed sell_threshold")
	}
	if c.Risk.DailyLossLimit >= 0 {
		return fmt.Errorf("risk.daily_loss_limit must be negative")
	}
	if c.Risk.StopLossRate >= 0 {
		return fmt.Errorf("risk.stop_loss_rate must be negative")
	}
	if c.Risk.SplitCount < 1 {
		return fmt.Errorf("risk.split_count must be at least 1")
	}
	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		return fmt.Errorf("slack.webhook_url is required when slack is enabled")
	}
	return nil
}
