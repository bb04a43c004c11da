package llm

import (
	"fmt"
	"time"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

// deepseekModels maps friendly names to DeepSeek model IDs.
var deepseekModels = map[string]string{
	"deepseek":          "deepseek-chat",
	"deepseek-chat":     "deepseek-chat",
	"deepseek-reasoner": "deepseek-reasoner",
}

// NewDeepSeekProvider creates a provider targeting the DeepSeek API.
// DeepSeek is OpenAI-compatible but only supports the json_object
// response format, so schemas are enforced locally after the call.
func NewDeepSeekProvider(cfg DeepSeekConfig, timeout time.Duration) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}

	return newOpenAIProviderRaw(OpenAIConfig{
		APIKey:     cfg.APIKey,
		Model:      resolveModel(model, deepseekModels),
		BaseURL:    baseURL,
		JSONObject: true,
		Timeout:    timeout,
	}), nil
}
