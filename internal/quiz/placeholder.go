package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/quizsmith/internal/text"
)

const (
	placeholderChunkText = "No content text was available. This is placeholder content."
	placeholderMCQExpl   = "This is a placeholder explanation. In a real system, the explanation would describe why the correct option is right."
	placeholderOpenExpl  = "This is a placeholder explanation for a non-MCQ question, describing what a good answer should contain."
	placeholderAnswer    = "Sample ideal answer based on the context."
)

var placeholderChoices = []ChoicePayload{
	{Label: "A", Text: "Correct placeholder answer based on the context."},
	{Label: "B", Text: "A plausible but incorrect option."},
	{Label: "C", Text: "Another distractor option."},
	{Label: "D", Text: "Yet another distractor option."},
}

// PlaceholderGenerator builds a deterministic quiz without any remote call.
// It is only used for local runs with no LLM credential.
type PlaceholderGenerator struct{}

func (PlaceholderGenerator) Generate(_ context.Context, in GenerateInput) (*Output, json.RawMessage, error) {
	var s Settings
	if len(in.Settings) > 0 {
		if err := json.Unmarshal(in.Settings, &s); err != nil {
			return nil, nil, invalid("settings: %v", err)
		}
	}
	s = s.WithDefaults()

	chunks := in.Chunks
	if len(chunks) == 0 {
		chunks = []ChunkRef{{SourceTitle: in.Title, Text: placeholderChunkText}}
	}

	questions := make([]QuestionPayload, 0, s.NumQuestions)
	for i := 1; i <= s.NumQuestions; i++ {
		typ := s.QuestionTypes[(i-1)%len(s.QuestionTypes)]
		if typ == "" {
			typ = TypeMCQ
		}
		chunk := chunks[(i-1)%len(chunks)]
		title := chunk.SourceTitle
		if title == "" {
			title = "Your content"
		}

		q := QuestionPayload{
			Index: i,
			Type:  typ,
			Prompt: fmt.Sprintf("Based on the following study material, answer the question.\n\n"+
				"Context (from '%s'):\n%s\n\n"+
				"Question %d: Summarize or answer a key idea from this context.",
				title, text.Truncate(chunk.Text, placeholderChars), i),
			Difficulty: s.Difficulty,
			BloomLevel: s.BloomLevel,
			Metadata:   Metadata{},
		}
		if typ == TypeMCQ {
			q.CorrectAnswer = "A"
			q.Explanation = placeholderMCQExpl
			q.Choices = append([]ChoicePayload(nil), placeholderChoices...)
		} else {
			q.CorrectAnswer = placeholderAnswer
			q.Explanation = placeholderOpenExpl
			q.Choices = []ChoicePayload{}
		}
		questions = append(questions, q)
	}

	out := &Output{Title: in.Title, Settings: settingsOrEmpty(in.Settings), Questions: questions}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, nil, fmt.Errorf("encode placeholder quiz: %w", err)
	}
	return out, raw, nil
}
