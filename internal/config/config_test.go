package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/chain-tools/internal/config"
)

var agentVars = []string{
	"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "AGENT_MODEL", "AGENT_TEMPERATURE",
	"AGENT_NAME", "AGENT_DATE", "AGENT_MAX_TOKENS", "AGENT_MAX_STEPS",
	"AGENT_MAX_CONCURRENCY", "AGENT_HTTP_TIMEOUT", "AGENT_CHAINS_FILE",
	"AGENT_RENDER_MARKDOWN", "LOG_LEVEL",
}

// clearEnv unsets every agent variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range agentVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

	cfg, err := config.FromEnv(now)
	require.NoError(t, err)
	assert.Equal(t, &config.Config{
		Model:          config.DefaultModel,
		Temperature:    0.2,
		Name:           "James",
		Date:           "March 5, 2024",
		MaxTokens:      1024,
		MaxSteps:       15,
		MaxConcurrency: 4,
		HTTPTimeout:    20 * time.Second,
		LogLevel:       "info",
	}, cfg)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_BASE_URL", "http://localhost:9999")
	t.Setenv("AGENT_MODEL", "claude-x")
	t.Setenv("AGENT_TEMPERATURE", "0")
	t.Setenv("AGENT_NAME", "Ada")
	t.Setenv("AGENT_DATE", "July 1, 2030")
	t.Setenv("AGENT_MAX_TOKENS", "256")
	t.Setenv("AGENT_MAX_STEPS", "3")
	t.Setenv("AGENT_MAX_CONCURRENCY", "2")
	t.Setenv("AGENT_HTTP_TIMEOUT", "1500ms")
	t.Setenv("AGENT_CHAINS_FILE", "chains.yaml")
	t.Setenv("AGENT_RENDER_MARKDOWN", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.FromEnv(time.Now())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.BaseURL)
	assert.Equal(t, "claude-x", cfg.Model)
	assert.Equal(t, 0.0, cfg.Temperature)
	assert.Equal(t, "Ada", cfg.Name)
	assert.Equal(t, "July 1, 2030", cfg.Date)
	assert.Equal(t, 256, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.MaxSteps)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTPTimeout)
	assert.Equal(t, "chains.yaml", cfg.ChainsFile)
	assert.True(t, cfg.RenderMarkdown)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnv_ParseErrors(t *testing.T) {
	for key, val := range map[string]string{
		"AGENT_TEMPERATURE":     "warm",
		"AGENT_MAX_TOKENS":      "lots",
		"AGENT_MAX_STEPS":       "1.5",
		"AGENT_MAX_CONCURRENCY": "x",
		"AGENT_HTTP_TIMEOUT":    "20",
		"AGENT_RENDER_MARKDOWN": "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := config.FromEnv(time.Now())
			require.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			APIKey: "k", Model: "m", Temperature: 0.5, MaxTokens: 1, MaxSteps: 1,
			MaxConcurrency: 1, HTTPTimeout: time.Second, LogLevel: "info",
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*config.Config){
		"empty model":      func(c *config.Config) { c.Model = "" },
		"temperature low":  func(c *config.Config) { c.Temperature = -0.1 },
		"temperature high": func(c *config.Config) { c.Temperature = 1.1 },
		"max tokens":       func(c *config.Config) { c.MaxTokens = 0 },
		"max steps":        func(c *config.Config) { c.MaxSteps = -1 },
		"concurrency":      func(c *config.Config) { c.MaxConcurrency = 0 },
		"timeout":          func(c *config.Config) { c.HTTPTimeout = 0 },
		"log level":        func(c *config.Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), config.ErrInvalid)
		})
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DotEnvFile),
		[]byte("ANTHROPIC_API_KEY=from-file\nAGENT_NAME=FromFile\n"), 0o600))
	t.Setenv("AGENT_NAME", "FromEnv")
	t.Chdir(dir)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "FromEnv", cfg.Name)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	_, err := config.Load()
	assert.NoError(t, err)
}
