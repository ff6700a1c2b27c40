package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsgrabber/internal/config"
)

func loadWith(t *testing.T, values map[string]any) (*config.Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("database.host", "127.0.0.1")
	viper.Set("database.name", "newsgrabber_test")
	for key, value := range values {
		viper.Set(key, value)
	}

	return config.Load()
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultFetchTimeout, cfg.Scraper.FetchTimeout)
	assert.Equal(t, int64(config.DefaultMaxContentSize), cfg.Scraper.MaxContentSize)
	assert.Equal(t, config.DefaultMaxArticlesPerRun, cfg.Scraper.MaxArticlesPerRun)
	assert.Equal(t, config.DefaultSweepInterval, cfg.Scheduler.SweepInterval)
	assert.Equal(t, config.DefaultRetryBackoff(), cfg.Scheduler.RetryBackoff)
	assert.Equal(t, config.DefaultWorkerPoolSize, cfg.Scheduler.WorkerPoolSize)
}

func TestLoad_OverridesFromConfig(t *testing.T) {
	cfg, err := loadWith(t, map[string]any{
		"scraper.fetch_timeout":        "10s",
		"scraper.max_articles_per_run": 5,
		"scheduler.sweep_interval":     "30m",
	})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Scraper.FetchTimeout)
	assert.Equal(t, 5, cfg.Scraper.MaxArticlesPerRun)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SweepInterval)
}

func TestLoad_KeepsZeroContentAge(t *testing.T) {
	cfg, err := loadWith(t, map[string]any{
		"scraper.max_content_age_days": 0,
	})
	require.NoError(t, err)

	assert.Zero(t, cfg.Scraper.MaxContentAgeDays, "0 disables the age filter and must survive defaulting")
}

func TestLoad_RequiresDatabaseSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database host")
}

func TestLoad_RejectsShortBackoffSchedule(t *testing.T) {
	_, err := loadWith(t, map[string]any{
		"scheduler.max_retries":   5,
		"scheduler.retry_backoff": []string{"1m"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry backoff")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5432",
		User:     "grabber",
		Password: "secret",
		Name:     "news",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=grabber password=secret dbname=news sslmode=require",
		cfg.DSN(),
	)
}
