package config

import (
	"golang-portfolio-analyzer/pkg/config"
	"time"
)

// Analyzer holds analyzer-specific configuration.
type Analyzer struct {
	DataDir            string        `mapstructure:"data_dir"`
	CacheDir           string        `mapstructure:"cache_dir"`
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks"`
	CacheFreshness     time.Duration `mapstructure:"cache_freshness"`
	DefaultProfile     string        `mapstructure:"default_profile"`
	MinDataPoints      int           `mapstructure:"min_data_points"`
	SchedulerCron      string        `mapstructure:"scheduler_cron"`

	// Per-indicator weights for the technical score, keyed by indicator
	// name (rsi, macd, trend, bollinger, adx, volume). Empty means equal
	// weighting; weights that do not sum to 1.0 are renormalized.
	IndicatorWeights map[string]float64 `mapstructure:"indicator_weights"`

	// Score request stream
	RedisStreamScoreRequestTimeout         time.Duration `mapstructure:"redis_stream_score_request_timeout"`
	RedisStreamScoreRequestRetryInterval   time.Duration `mapstructure:"redis_stream_score_request_retry_interval"`
	RedisStreamScoreRequestMaxIdleDuration time.Duration `mapstructure:"redis_stream_score_request_max_idle_duration"`
	RedisStreamScoreRequestMaxRetry        int           `mapstructure:"redis_stream_score_request_max_retry"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Analyzer     Analyzer        `mapstructure:"analyzer"`
	Telegram     Telegram        `mapstructure:"telegram"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
}

// Load loads the analyzer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Analyzer.DataDir == "" {
		cfg.Analyzer.DataDir = "data"
	}
	if cfg.Analyzer.CacheDir == "" {
		cfg.Analyzer.CacheDir = "cache"
	}
	if cfg.Analyzer.MaxConcurrentTasks <= 0 {
		cfg.Analyzer.MaxConcurrentTasks = 4
	}
	if cfg.Analyzer.CacheFreshness <= 0 {
		cfg.Analyzer.CacheFreshness = 18 * time.Hour
	}
	if cfg.Analyzer.MinDataPoints <= 0 {
		cfg.Analyzer.MinDataPoints = 50
	}
	if cfg.YahooFinance.BaseURL == "" {
		cfg.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.YahooFinance.MaxRequestPerMinute <= 0 {
		cfg.YahooFinance.MaxRequestPerMinute = 30
	}
}
