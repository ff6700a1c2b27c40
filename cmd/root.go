// Package cmd implements the command-line interface for newsgrabber.
// It provides the root command and subcommands for running the scrape
// pipeline and managing its supporting data.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/newsgrabber/cmd/migrate"
	cmdscheduler "github.com/jonesrussell/newsgrabber/cmd/scheduler"
	"github.com/jonesrussell/newsgrabber/cmd/scrape"
	"github.com/jonesrussell/newsgrabber/cmd/websites"
	"github.com/jonesrussell/newsgrabber/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	rootCmd = &cobra.Command{
		Use:   "newsgrabber",
		Short: "A keyword-driven news scraping pipeline",
		Long: `newsgrabber fetches configured news sites, discovers article links,
extracts content, matches it against keyword rules, and stores matched
articles in PostgreSQL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	// Parse flags early to get the debug flag before building loggers.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsgrabber version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
	rootCmd.AddCommand(websites.Command())
	rootCmd.AddCommand(migrate.Command())
}

// initConfig reads the config file and environment variables into viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional; defaults and environment cover everything.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment)\n", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if Debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		Debug = true
	}
	if viper.GetString("app.environment") == "development" {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}

	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":              {"APP_ENV"},
		"app.debug":                    {"APP_DEBUG"},
		"logger.level":                 {"LOG_LEVEL"},
		"logger.encoding":              {"LOG_FORMAT"},
		"database.host":                {"DATABASE_HOST", "DB_HOST"},
		"database.port":                {"DATABASE_PORT", "DB_PORT"},
		"database.user":                {"DATABASE_USER", "DB_USER"},
		"database.password":            {"DATABASE_PASSWORD", "DB_PASSWORD"},
		"database.name":                {"DATABASE_NAME", "DB_NAME"},
		"database.sslmode":             {"DATABASE_SSLMODE", "DB_SSLMODE"},
		"scraper.user_agent":           {"SCRAPER_USER_AGENT"},
		"scraper.fetch_timeout":        {"SCRAPER_FETCH_TIMEOUT"},
		"scraper.max_articles_per_run": {"SCRAPER_MAX_ARTICLES_PER_RUN"},
		"scraper.max_content_age_days": {"SCRAPER_MAX_CONTENT_AGE_DAYS"},
		"scraper.store_raw_html":       {"SCRAPER_STORE_RAW_HTML"},
		"scheduler.sweep_interval":     {"SCHEDULER_SWEEP_INTERVAL"},
		"scheduler.worker_pool_size":   {"SCHEDULER_WORKER_POOL_SIZE"},
	}

	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

// setDefaults sets production-safe default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "newsgrabber",
		"version":     "1.0.0",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
		"caller":      false,
	})

	viper.SetDefault("database", map[string]any{
		"host":    "127.0.0.1",
		"port":    "5432",
		"user":    "newsgrabber",
		"name":    "newsgrabber",
		"sslmode": "disable",
	})

	viper.SetDefault("scraper", map[string]any{
		"user_agent":           config.DefaultUserAgent,
		"fetch_timeout":        config.DefaultFetchTimeout.String(),
		"max_content_size":     config.DefaultMaxContentSize,
		"max_articles_per_run": config.DefaultMaxArticlesPerRun,
		"max_content_age_days": config.DefaultMaxContentAgeDays,
		"store_raw_html":       false,
		"insecure_skip_verify": true,
	})

	viper.SetDefault("scheduler", map[string]any{
		"sweep_interval":   config.DefaultSweepInterval.String(),
		"worker_pool_size": config.DefaultWorkerPoolSize,
		"max_retries":      config.DefaultMaxRetries,
		"attempt_timeout":  config.DefaultAttemptTimeout.String(),
	})
}
