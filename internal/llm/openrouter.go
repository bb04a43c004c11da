package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// are vendor-prefixed ("google/...") and pass through unmapped.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{OpenAIProvider: newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
		Headers: openRouterHeaders(cfg),
		Timeout: cfg.Timeout,
	})}, nil
}

func openRouterHeaders(cfg OpenRouterConfig) map[string]string {
	h := map[string]string{}
	if cfg.AppName != "" {
		h["X-Title"] = cfg.AppName
	}
	if cfg.AppURL != "" {
		h["HTTP-Referer"] = cfg.AppURL
	}
	return h
}
