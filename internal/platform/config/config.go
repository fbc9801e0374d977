// Package config loads application configuration from the environment,
// with optional .env support for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// LLM access for semantic grouping and significance scoring.
	LLMAPIKey    string `env:"LLM_API_KEY,required"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	RateLimitRPS int    `env:"RATE_LIMIT_RPS" envDefault:"1"`

	// Collection.
	HNFetchLimit    int           `env:"HN_FETCH_LIMIT" envDefault:"30"`
	FeedURLs        []string      `env:"FEED_URLS" envSeparator:","`
	ArxivCategories []string      `env:"ARXIV_CATEGORIES" envSeparator:"," envDefault:"cs.AI,cs.LG,cs.CL,stat.ML"`
	CollectTimeout  time.Duration `env:"COLLECT_TIMEOUT" envDefault:"2m"`

	// Deduplication.
	DedupWindowDays int           `env:"DEDUP_WINDOW_DAYS" envDefault:"7"`
	GroupingTimeout time.Duration `env:"GROUPING_TIMEOUT" envDefault:"45s"`

	// Prediction ledger.
	MarketTimezone string `env:"MARKET_TIMEZONE" envDefault:"UTC"`

	// Analyzer.
	AnalyzeBatchSize int `env:"ANALYZE_BATCH_SIZE" envDefault:"25"`

	// Serve mode.
	CycleInterval time.Duration `env:"CYCLE_INTERVAL" envDefault:"1h"`

	// Health and metrics server.
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool.
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
