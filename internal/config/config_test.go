package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	var cfg *Config
	app := &cli.App{
		Name:  "test",
		Flags: Flags(),
		Action: func(c *cli.Context) error {
			cfg = FromContext(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parse(t)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10*time.Second, cfg.FitTimeout)
	assert.Equal(t, "none", cfg.Advisor.Provider)
	assert.False(t, cfg.ArchiveEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverride(t *testing.T) {
	cfg := parse(t,
		"--data-dir", "/srv/data",
		"--workers", "8",
		"--fit-timeout", "2s",
		"--advisor", "Ollama",
		"--advisor-model", "llama3",
		"--clickhouse-host", "ch.local",
	)

	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.FitTimeout)
	assert.Equal(t, "ollama", cfg.Advisor.Provider)
	assert.Equal(t, "llama3", cfg.Advisor.Model)
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.NoError(t, cfg.Validate())
}

func TestEnvVars(t *testing.T) {
	t.Setenv("FORECAST_DATA_DIR", "/env/data")
	t.Setenv("PORT", "9090")
	t.Setenv("FORECAST_CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("ADVISOR_PROVIDER", "gemini")

	cfg := parse(t)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "gemini", cfg.Advisor.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DataDir: "", Workers: 0, FitTimeout: -time.Second, Advisor: AdvisorConfig{Provider: "gemini"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "data-dir")
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "fit-timeout")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	cfg = &Config{DataDir: "d", Workers: 1, Advisor: AdvisorConfig{Provider: "openai"}}
	assert.ErrorContains(t, cfg.Validate(), "unknown advisor")
}
