package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/quizsmith/internal/llm"
)

// Generator produces a structured quiz from source chunks.
type Generator interface {
	// Generate returns the quiz and its exact JSON encoding, which is stored
	// as the quiz's output.
	Generate(ctx context.Context, in GenerateInput) (*Output, json.RawMessage, error)
}

// GenerateInput is everything a generator sees.
type GenerateInput struct {
	Title        string
	Settings     json.RawMessage
	Chunks       []ChunkRef
	Instructions string
}

// NewGenerator returns the LLM generator when a provider is configured, the
// placeholder generator when cfg allows it, and ErrMissingCredential
// otherwise.
func NewGenerator(provider llm.Provider, cfg Config) (Generator, error) {
	if provider != nil {
		return NewLLMGenerator(provider, cfg)
	}
	if cfg.AllowPlaceholder {
		return PlaceholderGenerator{}, nil
	}
	return nil, ErrMissingCredential
}

// LLMGenerator implements Generator with a reasoning service. It never
// substitutes placeholder content when the call fails.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewLLMGenerator creates a generator. A nil provider is a configuration
// error.
func NewLLMGenerator(provider llm.Provider, cfg Config) (*LLMGenerator, error) {
	if provider == nil {
		return nil, ErrMissingCredential
	}
	return &LLMGenerator{provider: provider, config: cfg}, nil
}

func (g *LLMGenerator) Generate(ctx context.Context, in GenerateInput) (*Output, json.RawMessage, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)
	if g.config.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.GenerateTimeout)
		defer cancel()
	}

	userMsg, err := buildGenerateMessage(in)
	if err != nil {
		return nil, nil, err
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      generateSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      QuizSchema,
		MaxTokens:   g.config.GenerateMaxTokens,
		Temperature: g.config.GenerateTemperature,
	})
	if err != nil {
		return nil, nil, &GenerationError{Err: fmt.Errorf("LLM generation failed: %w", err)}
	}

	out, err := parseOutput(resp.Content)
	if err != nil {
		return nil, nil, &GenerationError{Err: err}
	}
	return out, resp.Content, nil
}

var errNoQuestions = errors.New("response has no valid 'questions' list")

// parseOutput decodes a quiz reply and requires a questions array.
func parseOutput(raw json.RawMessage) (*Output, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	qs, ok := shape["questions"]
	if !ok {
		return nil, errNoQuestions
	}
	var list []json.RawMessage
	if err := json.Unmarshal(qs, &list); err != nil || list == nil {
		return nil, errNoQuestions
	}

	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return &out, nil
}
