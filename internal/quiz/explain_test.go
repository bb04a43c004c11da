package quiz

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/quizsmith/internal/llm"
)

func explainInput() ExplainInput {
	return ExplainInput{
		Question: storedQuestion(),
		Settings: json.RawMessage(`{"num_questions":1,"question_types":["MCQ"]}`),
		Chunks:   []ChunkRef{{Text: strings.Repeat("c", 700)}},
	}
}

func TestExplain_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"  Mitochondria produce ATP.  "}`)})
	e := NewExplainer(mock, DefaultConfig(), nil)

	got, err := e.Explain(context.Background(), explainInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Mitochondria produce ATP." {
		t.Fatalf("explanation = %q", got)
	}

	req := mock.Calls[0]
	if req.Purpose != llm.PurposeQuestionExplain {
		t.Errorf("purpose = %q", req.Purpose)
	}
	if req.Temperature != 0.4 || req.Schema != ExplanationSchema {
		t.Errorf("request = %+v", req)
	}
	var payload struct {
		Question struct {
			Prompt      string `json:"prompt"`
			Explanation string `json:"explanation"`
		} `json:"question"`
		Snippet string `json:"context_snippet"`
	}
	json.Unmarshal([]byte(req.Messages[0].Content), &payload)
	if payload.Question.Prompt != "What powers the cell?" || payload.Question.Explanation != "" {
		t.Errorf("question = %+v", payload.Question)
	}
	if len(payload.Snippet) != 600 {
		t.Errorf("snippet length = %d", len(payload.Snippet))
	}
}

func TestExplain_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"empty explanation", llm.MockResponse{Content: json.RawMessage(`{"explanation":"   "}`)}},
		{"missing key", llm.MockResponse{Content: json.RawMessage(`{}`)}},
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}},
	}
	want := "This is a placeholder explanation for the question. In a real system, this would reference the key ideas from the source content. Example context snippet: " + strings.Repeat("c", 200)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExplainer(llm.NewMockProvider(tt.resp), DefaultConfig(), nil)
			got, err := e.Explain(context.Background(), explainInput())
			if err != nil {
				t.Fatalf("fallback should not error: %v", err)
			}
			if got != want {
				t.Fatalf("explanation = %q", got)
			}
		})
	}
}

func TestExplain_NoContext(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"ok"}`)})
	in := explainInput()
	in.Chunks = nil
	NewExplainer(mock, DefaultConfig(), nil).Explain(context.Background(), in)
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "No extra source context is available.") {
		t.Error("expected the no-context placeholder")
	}

	got, _ := NewExplainer(nil, DefaultConfig(), nil).Explain(context.Background(), in)
	if !strings.HasSuffix(got, "Example context snippet: ") {
		t.Errorf("fallback without chunks = %q", got)
	}
}
