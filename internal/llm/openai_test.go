package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatServer answers every completion with content and records the decoded
// request body.
func chatServer(t *testing.T, content, finish string, got *map[string]any) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func errorServer(t *testing.T, status int, errType string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": errType, "message": errType},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func newTestOpenAIProvider(t *testing.T, baseURL string, jsonObject bool) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:     "test-key",
		Model:      "gpt-4o-mini",
		BaseURL:    baseURL,
		JSONObject: jsonObject,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func quizRequest() Request {
	return Request{
		System:   "You are an AI that generates quizzes.",
		Messages: []Message{{Role: RoleUser, Content: "Generate a quiz from the context."}},
		Schema: &Schema{
			Name: "quiz-output",
			Definition: map[string]any{
				"type":       "object",
				"properties": map[string]any{"questions": map[string]any{"type": "array"}},
				"required":   []any{"questions"},
			},
		},
		MaxTokens:   256,
		Temperature: 0.3,
	}
}

func TestOpenAIProvider_StrictSchema(t *testing.T) {
	var body map[string]any
	url := chatServer(t, `{"questions":[{"index":1,"type":"MCQ","prompt":"What do chloroplasts do?"}]}`, "stop", &body)
	p := newTestOpenAIProvider(t, url, false)

	resp, err := p.Generate(context.Background(), quizRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 || resp.StopReason != "end" {
		t.Fatalf("response = %+v", resp)
	}

	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("response_format = %v", body["response_format"])
	}
	if schema, _ := format["json_schema"].(map[string]any); schema["name"] != "quiz-output" {
		t.Fatalf("json_schema = %v", format["json_schema"])
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestOpenAIProvider_JSONObjectMode(t *testing.T) {
	var body map[string]any
	url := chatServer(t, "```json\n{\"questions\":[]}\n```", "stop", &body)
	p := newTestOpenAIProvider(t, url, true)

	resp, err := p.Generate(context.Background(), quizRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"questions":[]}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if format, _ := body["response_format"].(map[string]any); format["type"] != "json_object" {
		t.Fatalf("response_format = %v", body["response_format"])
	}
	if body["max_tokens"] != float64(256) {
		t.Fatalf("max_tokens = %v", body["max_tokens"])
	}
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	p := newTestOpenAIProvider(t, chatServer(t, `{"title":"no questions"}`, "stop", nil), false)
	if _, err := p.Generate(context.Background(), quizRequest()); !IsInvalidResponse(err) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := newTestOpenAIProvider(t, chatServer(t, `{"questions":[{"pro`, "length", nil), false)
	_, err := p.Generate(context.Background(), quizRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	p := newTestOpenAIProvider(t, errorServer(t, http.StatusTooManyRequests, "rate_limit_exceeded"), false)
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	p := newTestOpenAIProvider(t, errorServer(t, http.StatusInternalServerError, "server_error"), false)
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Fatal("expected error for empty API key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Fatalf("model = %q", p.ModelID())
	}
}
