// Package config provides application configuration loaded from config
// files and environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// Default tunables for the scrape pipeline.
const (
	DefaultFetchTimeout      = 30 * time.Second
	DefaultMaxContentSize    = 5_000_000
	DefaultMaxArticlesPerRun = 3
	DefaultMaxContentAgeDays = 7
	DefaultMaxRetries        = 3
	DefaultAttemptTimeout    = 5 * time.Minute
	DefaultSweepInterval     = time.Hour
	DefaultWorkerPoolSize    = 4
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DefaultRetryBackoff is the dispatch retry schedule: 1 min, 5 min, 15 min.
func DefaultRetryBackoff() []time.Duration {
	return []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute}
}

// Config is the root application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    logger.Config   `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ScraperConfig holds pipeline tunables.
type ScraperConfig struct {
	// UserAgent is the browser-like request signature sent on every fetch.
	UserAgent string `mapstructure:"user_agent"`
	// FetchTimeout bounds one HTTP GET.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// MaxContentSize rejects response bodies larger than this many bytes.
	MaxContentSize int64 `mapstructure:"max_content_size"`
	// MaxArticlesPerRun caps discovered candidate links per website run.
	MaxArticlesPerRun int `mapstructure:"max_articles_per_run"`
	// MaxContentAgeDays skips articles published earlier than this many
	// days ago; 0 disables the age filter.
	MaxContentAgeDays int `mapstructure:"max_content_age_days"`
	// StoreRawHTML retains sanitized HTML of the selected content node.
	StoreRawHTML bool `mapstructure:"store_raw_html"`
	// InsecureSkipVerify disables TLS certificate verification. On by
	// default: this crawler targets arbitrary third-party sites that may
	// have misconfigured certificates. A deliberate trust relaxation.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// SchedulerConfig holds dispatch and sweep settings.
type SchedulerConfig struct {
	// SweepInterval is how often active websites are enqueued.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// WorkerPoolSize bounds concurrent website runs.
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// MaxRetries is the dispatch attempt count per job.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBackoff lists the delay before each redispatch attempt.
	RetryBackoff []time.Duration `mapstructure:"retry_backoff"`
	// AttemptTimeout is the hard wall-clock bound on one orchestration attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// Load unmarshals the current viper state into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills zero-value fields with production-safe defaults.
func (c *Config) applyDefaults() {
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = DefaultUserAgent
	}
	if c.Scraper.FetchTimeout <= 0 {
		c.Scraper.FetchTimeout = DefaultFetchTimeout
	}
	if c.Scraper.MaxContentSize <= 0 {
		c.Scraper.MaxContentSize = DefaultMaxContentSize
	}
	if c.Scraper.MaxArticlesPerRun <= 0 {
		c.Scraper.MaxArticlesPerRun = DefaultMaxArticlesPerRun
	}
	if c.Scraper.MaxContentAgeDays < 0 {
		c.Scraper.MaxContentAgeDays = DefaultMaxContentAgeDays
	}
	if c.Scheduler.SweepInterval <= 0 {
		c.Scheduler.SweepInterval = DefaultSweepInterval
	}
	if c.Scheduler.WorkerPoolSize <= 0 {
		c.Scheduler.WorkerPoolSize = DefaultWorkerPoolSize
	}
	if c.Scheduler.MaxRetries <= 0 {
		c.Scheduler.MaxRetries = DefaultMaxRetries
	}
	if len(c.Scheduler.RetryBackoff) == 0 {
		c.Scheduler.RetryBackoff = DefaultRetryBackoff()
	}
	if c.Scheduler.AttemptTimeout <= 0 {
		c.Scheduler.AttemptTimeout = DefaultAttemptTimeout
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database host must be specified")
	}
	if c.Database.Name == "" {
		return errors.New("database name must be specified")
	}
	if c.Scraper.FetchTimeout > 10*time.Minute {
		return fmt.Errorf("fetch timeout %s exceeds sane bound", c.Scraper.FetchTimeout)
	}
	if len(c.Scheduler.RetryBackoff) < c.Scheduler.MaxRetries-1 {
		return fmt.Errorf(
			"retry backoff schedule has %d entries for %d attempts",
			len(c.Scheduler.RetryBackoff), c.Scheduler.MaxRetries,
		)
	}
	return nil
}
