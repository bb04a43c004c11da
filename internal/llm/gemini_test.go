package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{"type": "string"},
			"index":  map[string]any{"type": "integer"},
			"type":   map[string]any{"type": "string", "enum": []any{"MCQ", "FRQ", "CLOZE"}},
			"choices": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"prompt", "index"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["prompt"].Type != "STRING" {
		t.Fatalf("expected STRING for prompt, got %s", schema.Properties["prompt"].Type)
	}
	if schema.Properties["index"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for index, got %s", schema.Properties["index"].Type)
	}
	if len(schema.Properties["type"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["type"].Enum))
	}
	if schema.Properties["choices"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for choices, got %s", schema.Properties["choices"].Type)
	}
	if schema.Properties["choices"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for choices items, got %s", schema.Properties["choices"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiSchema_NullableAndFreeFormObjects(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt":   map[string]any{"type": "string"},
			"metadata": map[string]any{"type": []any{"object", "null"}},
			"settings": map[string]any{"type": "object"},
			"hint":     map[string]any{"type": []any{"string", "null"}},
		},
	}

	schema := buildGeminiSchema(def)

	if _, ok := schema.Properties["metadata"]; ok {
		t.Error("free-form object should be left out")
	}
	if _, ok := schema.Properties["settings"]; ok {
		t.Error("free-form object should be left out")
	}
	hint := schema.Properties["hint"]
	if hint == nil || hint.Type != "STRING" {
		t.Fatalf("hint = %+v", hint)
	}
	if hint.Nullable == nil || !*hint.Nullable {
		t.Fatal("hint should be nullable")
	}
}

func TestGeminiTruncated(t *testing.T) {
	tests := []struct {
		name   string
		result *genai.GenerateContentResponse
		want   bool
	}{
		{"no candidates", &genai.GenerateContentResponse{}, false},
		{"stop", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}}, false},
		{"max tokens", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}}, true},
	}
	for _, tt := range tests {
		if got := geminiTruncated(tt.result); got != tt.want {
			t.Errorf("%s: geminiTruncated = %v, want %v", tt.name, got, tt.want)
		}
	}
}
