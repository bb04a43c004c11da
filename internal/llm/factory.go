package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "deepseek":
		base, err = NewDeepSeekProvider(cfg.DeepSeek, cfg.Timeout)
	case "anthropic":
		ant := cfg.Anthropic
		ant.Timeout = cfg.Timeout
		base, err = NewAnthropicProvider(ant)
	case "openai":
		oai := cfg.OpenAI
		oai.Timeout = cfg.Timeout
		base, err = NewOpenAIProvider(oai)
	case "gemini":
		gem := cfg.Gemini
		gem.Timeout = cfg.Timeout
		base, err = NewGeminiProvider(ctx, gem)
	case "openrouter":
		orc := cfg.OpenRouter
		orc.Timeout = cfg.Timeout
		base, err = NewOpenRouterProvider(orc)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, eventRepo, AsProvider(cfg.Provider), LogTo(log))
	retried := WithRetry(logged, cfg.Retry, RetryLogTo(log))

	return retried, nil
}
