// Package config reads agent settings from the environment, after loading a
// .env file if one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is returned by Validate when ANTHROPIC_API_KEY is unset.
var ErrMissingAPIKey = errors.New("missing ANTHROPIC_API_KEY; export it or add it to .env")

// ErrInvalid wraps every other validation and parse failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Model client
	APIKey  string
	BaseURL string

	// Agent
	Model       string
	Temperature float64
	Name        string
	Date        string
	MaxTokens   int
	MaxSteps    int

	// Tools
	MaxConcurrency int
	HTTPTimeout    time.Duration
	ChainsFile     string

	// Output
	RenderMarkdown bool
	LogLevel       string
}

// Load reads .env (a missing file is fine) and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return FromEnv(time.Now())
}

// FromEnv builds a Config from the environment alone. now supplies the
// default for Date.
func FromEnv(now time.Time) (*Config, error) {
	cfg := &Config{
		Model:          DefaultModel,
		Temperature:    DefaultTemperature,
		Name:           DefaultName,
		Date:           now.Format(DefaultDateLayout),
		MaxTokens:      DefaultMaxTokens,
		MaxSteps:       DefaultMaxSteps,
		MaxConcurrency: DefaultMaxConcurrency,
		HTTPTimeout:    DefaultHTTPTimeout,
		LogLevel:       DefaultLogLevel,
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.APIKey)
	cfg.BaseURL = getEnv("ANTHROPIC_BASE_URL", cfg.BaseURL)
	cfg.Model = getEnv("AGENT_MODEL", cfg.Model)
	cfg.Name = getEnv("AGENT_NAME", cfg.Name)
	cfg.Date = getEnv("AGENT_DATE", cfg.Date)
	cfg.ChainsFile = getEnv("AGENT_CHAINS_FILE", cfg.ChainsFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if v := getEnv("AGENT_TEMPERATURE", ""); v != "" {
		if cfg.Temperature, err = strconv.ParseFloat(v, 64); err != nil {
			return envError("AGENT_TEMPERATURE", v, err)
		}
	}
	if v := getEnv("AGENT_MAX_TOKENS", ""); v != "" {
		if cfg.MaxTokens, err = strconv.Atoi(v); err != nil {
			return envError("AGENT_MAX_TOKENS", v, err)
		}
	}
	if v := getEnv("AGENT_MAX_STEPS", ""); v != "" {
		if cfg.MaxSteps, err = strconv.Atoi(v); err != nil {
			return envError("AGENT_MAX_STEPS", v, err)
		}
	}
	if v := getEnv("AGENT_MAX_CONCURRENCY", ""); v != "" {
		if cfg.MaxConcurrency, err = strconv.Atoi(v); err != nil {
			return envError("AGENT_MAX_CONCURRENCY", v, err)
		}
	}
	if v := getEnv("AGENT_HTTP_TIMEOUT", ""); v != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return envError("AGENT_HTTP_TIMEOUT", v, err)
		}
	}
	if v := getEnv("AGENT_RENDER_MARKDOWN", ""); v != "" {
		if cfg.RenderMarkdown, err = strconv.ParseBool(v); err != nil {
			return envError("AGENT_RENDER_MARKDOWN", v, err)
		}
	}
	return nil
}

func envError(key, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, value, err)
}

// Validate reports the first problem with cfg. Call it after flags have been
// applied.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return ErrMissingAPIKey
	case c.Model == "":
		return fmt.Errorf("%w: model must not be empty", ErrInvalid)
	case c.Temperature < 0 || c.Temperature > 1:
		return fmt.Errorf("%w: temperature %v outside [0, 1]", ErrInvalid, c.Temperature)
	case c.MaxTokens <= 0:
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalid, c.MaxTokens)
	case c.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalid, c.MaxSteps)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("%w: max concurrency must be positive, got %d", ErrInvalid, c.MaxConcurrency)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("%w: http timeout must be positive, got %s", ErrInvalid, c.HTTPTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
