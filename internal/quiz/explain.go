package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// ExplainInput is the question to explain and the context behind it.
type ExplainInput struct {
	Question store.Question
	Settings json.RawMessage
	Chunks   []ChunkRef
}

// Explainer writes a student-facing explanation for one question.
type Explainer struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

func NewExplainer(provider llm.Provider, cfg Config, log *logger.Logger) *Explainer {
	return &Explainer{provider: provider, config: cfg, log: logger.OrNop(log).With("component", "explain")}
}

var errEmptyExplanation = errors.New("empty explanation")

// Explain returns an explanation, falling back to a placeholder that quotes
// the source on any remote failure. The error is non-nil only when ctx
// itself is done.
func (e *Explainer) Explain(ctx context.Context, in ExplainInput) (string, error) {
	if e.provider == nil {
		return fallbackExplanation(in.Chunks), nil
	}
	text, err := e.remote(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.log.Warn("explanation failed, using placeholder", "question_id", in.Question.ID, "error", err)
		return fallbackExplanation(in.Chunks), nil
	}
	return text, nil
}

func (e *Explainer) remote(ctx context.Context, in ExplainInput) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionExplain)
	if e.config.ExplainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ExplainTimeout)
		defer cancel()
	}

	userMsg, err := buildExplainMessage(in)
	if err != nil {
		return "", err
	}
	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      explainSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      ExplanationSchema,
		MaxTokens:   e.config.ExplainMaxTokens,
		Temperature: e.config.ExplainTemperature,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("failed to parse LLM response: %w", err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", errEmptyExplanation
	}
	return text, nil
}

func fallbackExplanation(chunks []ChunkRef) string {
	return "This is a placeholder explanation for the question. " +
		"In a real system, this would reference the key ideas from the source content. " +
		"Example context snippet: " + firstSnippet(chunks, fallbackSnippetLen)
}
