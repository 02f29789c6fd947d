// Package config builds the runtime configuration from command line flags
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

type AdvisorConfig struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
}

type PostgresConfig struct {
	DSN string
}

type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Config struct {
	DataDir     string
	Indicators  string
	Port        string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	Workers     int
	FitTimeout  time.Duration
	Advisor     AdvisorConfig
	Postgres    PostgresConfig
	ClickHouse  ClickHouseConfig
}

// ArchiveEnabled reports whether a ClickHouse host was configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ClickHouse.Host != ""
}

// Flags returns the shared flag set for every command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Value:   "data",
			Usage:   "Directory holding indicator datasets",
			EnvVars: []string{"FORECAST_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "indicators",
			Usage:   "JSON file overriding the built-in indicator catalogue",
			EnvVars: []string{"FORECAST_INDICATORS"},
		},
		&cli.StringFlag{
			Name:    "port",
			Value:   "8001",
			Usage:   "HTTP listen port",
			EnvVars: []string{"PORT"},
		},
		&cli.StringSliceFlag{
			Name:    "cors-origin",
			Value:   cli.NewStringSlice("http://localhost:3000", "http://127.0.0.1:3000"),
			Usage:   "Allowed CORS origin (repeatable)",
			EnvVars: []string{"FORECAST_CORS_ORIGINS"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			EnvVars: []string{"FORECAST_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "pretty",
			Usage:   "Log format (pretty, json)",
			EnvVars: []string{"FORECAST_LOG_FORMAT"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Value:   4,
			Usage:   "Indicators forecast in parallel",
			EnvVars: []string{"FORECAST_WORKERS"},
		},
		&cli.DurationFlag{
			Name:    "fit-timeout",
			Value:   10 * time.Second,
			Usage:   "Time limit per indicator (0 disables)",
			EnvVars: []string{"FORECAST_FIT_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "advisor",
			Value:   "none",
			Usage:   "Recommendation provider (none, ollama, gemini)",
			EnvVars: []string{"ADVISOR_PROVIDER"},
		},
		&cli.StringFlag{
			Name:    "advisor-url",
			Usage:   "Advisor base URL",
			EnvVars: []string{"OLLAMA_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "advisor-model",
			Usage:   "Advisor model name",
			EnvVars: []string{"OLLAMA_MODEL", "GEMINI_MODEL"},
		},
		&cli.StringFlag{
			Name:    "gemini-api-key",
			Usage:   "Gemini API key",
			EnvVars: []string{"GEMINI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "postgres-dsn",
			Usage:   "Load datasets from PostgreSQL tables instead of files",
			EnvVars: []string{"FORECAST_POSTGRES_DSN"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-host",
			Usage:   "ClickHouse host for the run archive (empty disables)",
			EnvVars: []string{"CLICKHOUSE_HOST"},
		},
		&cli.IntFlag{
			Name:    "clickhouse-port",
			Value:   9000,
			Usage:   "ClickHouse native port",
			EnvVars: []string{"CLICKHOUSE_PORT"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-database",
			Value:   "forecast",
			Usage:   "ClickHouse database",
			EnvVars: []string{"CLICKHOUSE_DATABASE"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-user",
			Value:   "default",
			Usage:   "ClickHouse user",
			EnvVars: []string{"CLICKHOUSE_USER"},
		},
		&cli.StringFlag{
			Name:    "clickhouse-password",
			Usage:   "ClickHouse password",
			EnvVars: []string{"CLICKHOUSE_PASSWORD"},
		},
	}
}

// FromContext reads the flags defined by Flags.
func FromContext(c *cli.Context) *Config {
	var origins []string
	for _, o := range c.StringSlice("cors-origin") {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}

	return &Config{
		DataDir:     c.String("data-dir"),
		Indicators:  c.String("indicators"),
		Port:        c.String("port"),
		CORSOrigins: origins,
		LogLevel:    c.String("log-level"),
		LogFormat:   c.String("log-format"),
		Workers:     c.Int("workers"),
		FitTimeout:  c.Duration("fit-timeout"),
		Advisor: AdvisorConfig{
			Provider: strings.ToLower(c.String("advisor")),
			BaseURL:  c.String("advisor-url"),
			Model:    c.String("advisor-model"),
			APIKey:   c.String("gemini-api-key"),
		},
		Postgres: PostgresConfig{
			DSN: c.String("postgres-dsn"),
		},
		ClickHouse: ClickHouseConfig{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		},
	}
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" && c.Postgres.DSN == "" {
		errs = append(errs, errors.New("data-dir or postgres-dsn is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.FitTimeout < 0 {
		errs = append(errs, fmt.Errorf("fit-timeout must not be negative"))
	}
	switch c.Advisor.Provider {
	case "", "none", "ollama":
	case "gemini":
		if c.Advisor.APIKey == "" {
			errs = append(errs, errors.New("gemini advisor requires GEMINI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown advisor %q", c.Advisor.Provider))
	}
	if c.ClickHouse.Host != "" && (c.ClickHouse.Port < 1 || c.ClickHouse.Port > 65535) {
		errs = append(errs, fmt.Errorf("clickhouse-port out of range: %d", c.ClickHouse.Port))
	}
	return errors.Join(errs...)
}
