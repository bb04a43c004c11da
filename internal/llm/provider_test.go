package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{"b":2}`), Model: "deepseek-chat"})

	ctx := WithPurpose(context.Background(), PurposeQuizGen)
	resp, err := mock.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 {
		t.Fatalf("first reply = %+v", resp)
	}
	if resp.Model != "mock" || resp.StopReason != StopEnd {
		t.Fatalf("first reply identity = %q/%q", resp.Model, resp.StopReason)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}

	resp, err = mock.Generate(WithPurpose(ctx, PurposeQuestionExplain), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "deepseek-chat" {
		t.Fatalf("model override = %q", resp.Model)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable once the script is spent, got: %T", err)
	}

	if mock.CallCount() != 4 || mock.Calls[0].System != "sys" {
		t.Fatalf("calls = %+v", mock.Calls)
	}
	want := []string{PurposeQuizGen, PurposeQuizGen, PurposeQuestionExplain, "unknown"}
	got := mock.Purposes()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("purposes = %v, want %v", got, want)
		}
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	if id := NewMockProvider().ModelID(); id != "mock" {
		t.Fatalf("expected 'mock', got %q", id)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != "unknown" {
		t.Fatalf("empty purpose should read as unknown, got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeQuestionRegen)); p != "question-regen" {
		t.Fatalf("expected 'question-regen', got %q", p)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if id := RequestIDFrom(ctx); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if WithRequestID(ctx, "") != ctx {
		t.Fatal("empty id should leave the context untouched")
	}
	if id := RequestIDFrom(WithRequestID(ctx, "abc")); id != "abc" {
		t.Fatalf("expected 'abc', got %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "deepseek without key",
			cfg:     Config{Provider: "deepseek"},
			wantErr: true,
		},
		{
			name:    "deepseek with key",
			cfg:     Config{Provider: "deepseek", DeepSeek: DeepSeekConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{Provider: "openrouter"},
			wantErr: true,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv_QuizsmithPrefix(t *testing.T) {
	t.Setenv("QUIZSMITH_LLM_PROVIDER", "openai")
	t.Setenv("QUIZSMITH_OPENAI_API_KEY", "sk-env")
	t.Setenv("QUIZSMITH_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Fatalf("provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("openai key = %q", cfg.OpenAI.APIKey)
	}
	if cfg.Timeout.String() != "45s" {
		t.Fatalf("timeout = %s, want 45s", cfg.Timeout)
	}
}

func TestDefaultConfig_DeepSeekNoRetries(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "deepseek" || cfg.DeepSeek.Model != "deepseek-chat" {
		t.Fatalf("unexpected default provider %q/%q", cfg.Provider, cfg.DeepSeek.Model)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("MaxAttempts = %d, want 1", cfg.Retry.MaxAttempts)
	}
}

func TestResolve(t *testing.T) {
	for _, k := range []string{"QUIZSMITH_LLM_PROVIDER", "QUIZSMITH_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := Resolve(); ok {
		t.Fatal("expected no credential")
	}

	t.Setenv("OPENAI_API_KEY", "sk-std")
	cfg, ok := Resolve()
	if !ok || cfg.Provider != "openai" {
		t.Fatalf("Resolve() = %q, %v; want openai", cfg.Provider, ok)
	}

	t.Setenv("QUIZSMITH_DEEPSEEK_API_KEY", "sk-ds")
	cfg, ok = Resolve()
	if !ok || cfg.Provider != "deepseek" || cfg.DeepSeek.APIKey != "sk-ds" {
		t.Fatalf("Resolve() = %q, %v; want explicit deepseek", cfg.Provider, ok)
	}
}
