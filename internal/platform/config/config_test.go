package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/pulse")
	t.Setenv("LLM_API_KEY", "mock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 7, cfg.DedupWindowDays)
	assert.Equal(t, "UTC", cfg.MarketTimezone)
	assert.Equal(t, []string{"cs.AI", "cs.LG", "cs.CL", "stat.ML"}, cfg.ArxivCategories)
	assert.Equal(t, time.Hour, cfg.CycleInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/pulse")
	t.Setenv("LLM_API_KEY", "key")
	t.Setenv("MARKET_TIMEZONE", "America/New_York")
	t.Setenv("FEED_URLS", "https://a.example/rss,https://b.example/rss")
	t.Setenv("DEDUP_WINDOW_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.MarketTimezone)
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.FeedURLs)
	assert.Equal(t, 14, cfg.DedupWindowDays)
}

func TestLoadMissingRequired(t *testing.T) {
	// t.Setenv registers restoration; the unset makes the variable truly
	// absent rather than empty.
	t.Setenv("POSTGRES_DSN", "placeholder")
	t.Setenv("LLM_API_KEY", "placeholder")
	require.NoError(t, os.Unsetenv("POSTGRES_DSN"))
	require.NoError(t, os.Unsetenv("LLM_API_KEY"))

	_, err := Load()
	assert.Error(t, err)
}
