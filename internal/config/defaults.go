package config

import "time"

const (
	DefaultModel          = "claude-3-7-sonnet-latest"
	DefaultTemperature    = 0.2
	DefaultName           = "James"
	DefaultDateLayout     = "January 2, 2006"
	DefaultMaxTokens      = 1024
	DefaultMaxSteps       = 15
	DefaultMaxConcurrency = 4
	DefaultHTTPTimeout    = 20 * time.Second
	DefaultLogLevel       = "info"

	// DotEnvFile is loaded from the working directory when present.
	DotEnvFile = ".env"
)
