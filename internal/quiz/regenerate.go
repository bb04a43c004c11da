package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// Overrides replace the question's own type, difficulty or Bloom level.
type Overrides struct {
	Type       QuestionType `json:"type"`
	Difficulty string       `json:"difficulty"`
	BloomLevel string       `json:"bloom_level"`
}

// RegenerateInput is the state a single question is rewritten from.
type RegenerateInput struct {
	Question     store.Question
	Settings     json.RawMessage
	Overrides    Overrides
	Instructions string
	Chunks       []ChunkRef
}

// Regenerator rewrites one question. Every remote failure falls back to a
// deterministic local rewrite.
type Regenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewRegenerator creates a regenerator. A nil provider always takes the
// local path.
func NewRegenerator(provider llm.Provider, cfg Config, log *logger.Logger) *Regenerator {
	return &Regenerator{provider: provider, config: cfg, log: logger.OrNop(log).With("component", "regenerate")}
}

// Regenerate returns the replacement question. Its index is always the
// original question's index. The error is non-nil only when ctx itself is
// done.
func (r *Regenerator) Regenerate(ctx context.Context, in RegenerateInput) (QuestionPayload, error) {
	resolved := resolveOverrides(in.Question, in.Overrides)

	if r.provider == nil {
		r.log.Warn("no LLM provider, using local regeneration", "question_id", in.Question.ID)
		return fallbackRegenerate(in, resolved), nil
	}

	q, err := r.remote(ctx, in, resolved)
	if err != nil {
		if ctx.Err() != nil {
			return QuestionPayload{}, ctx.Err()
		}
		r.log.Warn("regeneration failed, using local regeneration", "question_id", in.Question.ID, "error", err)
		return fallbackRegenerate(in, resolved), nil
	}
	q.Index = in.Question.Index
	return q, nil
}

func (r *Regenerator) remote(ctx context.Context, in RegenerateInput, resolved Overrides) (QuestionPayload, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionRegen)
	if r.config.RegenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RegenerateTimeout)
		defer cancel()
	}

	userMsg, err := buildRegenerateMessage(in, resolved)
	if err != nil {
		return QuestionPayload{}, err
	}
	resp, err := r.provider.Generate(ctx, llm.Request{
		System:      regenerateSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      RegeneratedQuestionSchema,
		MaxTokens:   r.config.RegenerateMaxTokens,
		Temperature: r.config.RegenerateTemperature,
	})
	if err != nil {
		return QuestionPayload{}, err
	}

	var q QuestionPayload
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		return QuestionPayload{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return q, nil
}

// resolveOverrides picks override, then the question's value, then a default.
func resolveOverrides(q store.Question, o Overrides) Overrides {
	res := Overrides{Type: o.Type, Difficulty: o.Difficulty, BloomLevel: o.BloomLevel}
	if res.Type == "" {
		res.Type = QuestionType(q.Type)
	}
	if res.Type == "" {
		res.Type = TypeMCQ
	}
	if res.Difficulty == "" {
		res.Difficulty = q.Difficulty
	}
	if res.Difficulty == "" {
		res.Difficulty = DefaultDifficulty
	}
	if res.BloomLevel == "" {
		res.BloomLevel = q.BloomLevel
	}
	return res
}

var regeneratedChoices = []ChoicePayload{
	{Label: "A", Text: "New correct placeholder answer."},
	{Label: "B", Text: "New distractor option 1."},
	{Label: "C", Text: "New distractor option 2."},
	{Label: "D", Text: "New distractor option 3."},
}

func fallbackRegenerate(in RegenerateInput, resolved Overrides) QuestionPayload {
	q := QuestionPayload{
		Index: in.Question.Index,
		Type:  resolved.Type,
		Prompt: fmt.Sprintf("(Regenerated) Based on this context:\n%s\n\nProvide a new question testing the same concept.",
			firstSnippet(in.Chunks, placeholderChars)),
		Difficulty:  resolved.Difficulty,
		BloomLevel:  resolved.BloomLevel,
		Explanation: "This is a regenerated placeholder explanation. In a real system, this would be produced by an LLM.",
		Metadata:    Metadata{},
		Choices:     []ChoicePayload{},
	}
	if resolved.Type == TypeMCQ {
		q.CorrectAnswer = "A"
		q.Choices = append(q.Choices, regeneratedChoices...)
	} else {
		q.CorrectAnswer = "Sample regenerated answer."
	}
	return q
}
