package quiz

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizsmith/internal/store"
	"github.com/abhisek/quizsmith/internal/text"
)

const (
	maxContextChunks    = 6
	contextChunkChars   = 900
	regenContextChars   = 800
	explainContextChars = 600
	placeholderChars    = 400
	fallbackSnippetLen  = 200

	noContent        = "No content provided."
	noRegenContext   = "No context available, rely on the question text."
	noExplainContext = "No extra source context is available."
)

const generateSystemPrompt = `You are an AI that generates QUIZ QUESTIONS ONLY in VALID JSON.
Rules:
- Output MUST be valid JSON only (no markdown, no comments, no code fences)
- Follow the given schema strictly.
- Questions should be challenging but fair, based on the given context.`

const regenerateSystemPrompt = `You are an AI that REGENERATES a single quiz question.
You must output ONLY valid JSON for ONE question object.
No markdown, no comments, no explanations. Just JSON.`

const explainSystemPrompt = `You are an AI that explains quiz questions to students.
You MUST return ONLY valid JSON with one key: 'explanation'.
No markdown, no backticks, no comments.`

// buildContext joins the leading chunks, each clipped, one per line.
func buildContext(chunks []ChunkRef) string {
	if len(chunks) == 0 {
		return noContent
	}
	if len(chunks) > maxContextChunks {
		chunks = chunks[:maxContextChunks]
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = text.Truncate(c.Text, contextChunkChars)
	}
	return strings.Join(parts, "\n")
}

// firstSnippet clips the first chunk, or returns empty when there is none.
func firstSnippet(chunks []ChunkRef, n int) string {
	if len(chunks) == 0 {
		return ""
	}
	return text.Truncate(chunks[0].Text, n)
}

var choiceHint = []map[string]string{
	{"label": "A", "text": "string"},
	{"label": "B", "text": "string"},
	{"label": "C", "text": "string"},
	{"label": "D", "text": "string"},
}

const typeHint = "MCQ | FRQ | TRUE_FALSE | CLOZE | MATCHING | REASONING"

type generatePayload struct {
	QuizTitle    string          `json:"quiz_title"`
	Instructions string          `json:"instructions"`
	Settings     json.RawMessage `json:"settings"`
	Context      string          `json:"context"`
	Schema       any             `json:"schema"`
}

func buildGenerateMessage(in GenerateInput) (string, error) {
	return marshalPayload(generatePayload{
		QuizTitle:    in.Title,
		Instructions: in.Instructions,
		Settings:     settingsOrEmpty(in.Settings),
		Context:      buildContext(in.Chunks),
		Schema: map[string]any{
			"title":    "string",
			"settings": "same as input 'settings'",
			"questions": []any{map[string]any{
				"index":          "integer (1-based)",
				"type":           typeHint,
				"prompt":         "non-empty string, clear standalone question",
				"difficulty":     "easy | medium | hard",
				"bloom_level":    "e.g. remember, understand, apply, analyze, evaluate, create",
				"correct_answer": "string (for MCQ = label like 'A')",
				"choices":        choiceHint,
				"explanation":    "string (why the answer is correct)",
				"matching_pairs": "for MATCHING, [{left, right}], otherwise null",
			}},
		},
	})
}

// questionState is a stored question as shown to the model.
type questionState struct {
	Type          string        `json:"type"`
	Prompt        string        `json:"prompt"`
	Difficulty    string        `json:"difficulty"`
	BloomLevel    string        `json:"bloom_level"`
	CorrectAnswer string        `json:"correct_answer"`
	Choices       []choiceState `json:"choices"`
	Explanation   string        `json:"explanation,omitempty"`
}

type choiceState struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

func stateOf(q store.Question, withExplanation bool) questionState {
	st := questionState{
		Type:          q.Type,
		Prompt:        q.Prompt,
		Difficulty:    q.Difficulty,
		BloomLevel:    q.BloomLevel,
		CorrectAnswer: q.CorrectAnswer,
		Choices:       make([]choiceState, len(q.Choices)),
	}
	if withExplanation {
		st.Explanation = q.Explanation
	}
	for i, c := range q.Choices {
		st.Choices[i] = choiceState{Label: c.Label, Text: c.Text, IsCorrect: c.IsCorrect}
	}
	return st
}

type regeneratePayload struct {
	OriginalQuestion questionState   `json:"original_question"`
	QuizSettings     json.RawMessage `json:"quiz_settings"`
	Overrides        Overrides       `json:"overrides"`
	UserInstructions string          `json:"user_instructions"`
	ContextSnippet   string          `json:"context_snippet"`
	Schema           any             `json:"schema"`
}

func buildRegenerateMessage(in RegenerateInput, resolved Overrides) (string, error) {
	snippet := noRegenContext
	if len(in.Chunks) > 0 {
		snippet = firstSnippet(in.Chunks, regenContextChars)
	}
	return marshalPayload(regeneratePayload{
		OriginalQuestion: stateOf(in.Question, true),
		QuizSettings:     settingsOrEmpty(in.Settings),
		Overrides:        resolved,
		UserInstructions: in.Instructions,
		ContextSnippet:   snippet,
		Schema: map[string]any{
			"index":          fmt.Sprintf("%d (keep same index)", in.Question.Index),
			"type":           typeHint,
			"prompt":         "new, clear standalone question",
			"difficulty":     "string",
			"bloom_level":    "string",
			"correct_answer": "string (for MCQ = label like 'A')",
			"choices":        choiceHint,
			"explanation":    "string",
			"matching_pairs": "for MATCHING, [{left, right}], otherwise null",
		},
	})
}

type explainPayload struct {
	Question       questionState   `json:"question"`
	QuizSettings   json.RawMessage `json:"quiz_settings"`
	ContextSnippet string          `json:"context_snippet"`
}

func buildExplainMessage(in ExplainInput) (string, error) {
	snippet := noExplainContext
	if len(in.Chunks) > 0 {
		snippet = firstSnippet(in.Chunks, explainContextChars)
	}
	return marshalPayload(explainPayload{
		Question:       stateOf(in.Question, false),
		QuizSettings:   settingsOrEmpty(in.Settings),
		ContextSnippet: snippet,
	})
}

func settingsOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage(`{}`)
	}
	return raw
}

func marshalPayload(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode prompt payload: %w", err)
	}
	return string(b), nil
}
