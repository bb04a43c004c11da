package quiz

import (
	"os"
	"strconv"
	"time"
)

// Config controls the reasoning-service calls of the quiz package.
type Config struct {
	// Generation is the slow path and is allowed to take long.
	GenerateTimeout     time.Duration
	GenerateTemperature float64
	GenerateMaxTokens   int

	RegenerateTimeout     time.Duration
	RegenerateTemperature float64
	RegenerateMaxTokens   int

	ExplainTimeout     time.Duration
	ExplainTemperature float64
	ExplainMaxTokens   int

	// AllowPlaceholder selects PlaceholderGenerator when no LLM provider is
	// configured. Without it, generation fails with ErrMissingCredential.
	AllowPlaceholder bool
}

// DefaultConfig returns the standard timeouts and temperatures.
func DefaultConfig() Config {
	return Config{
		GenerateTimeout:       180 * time.Second,
		GenerateTemperature:   0.3,
		GenerateMaxTokens:     8000,
		RegenerateTimeout:     60 * time.Second,
		RegenerateTemperature: 0.4,
		RegenerateMaxTokens:   1500,
		ExplainTimeout:        60 * time.Second,
		ExplainTemperature:    0.4,
		ExplainMaxTokens:      800,
	}
}

// ConfigFromEnv applies QUIZSMITH_ALLOW_PLACEHOLDER to the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v, err := strconv.ParseBool(os.Getenv("QUIZSMITH_ALLOW_PLACEHOLDER")); err == nil {
		cfg.AllowPlaceholder = v
	}
	return cfg
}
