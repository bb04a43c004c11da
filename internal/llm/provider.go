package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a reasoning service and returns its reply.
//
// When Request.Schema is set the provider uses its native structured-output
// mode and validates the reply locally; Content is then a JSON object that
// matches the schema. Implementations must be safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System string
	// Every call quizsmith makes is single-turn: one user message.
	Messages []Message
	Schema   *Schema

	MaxTokens int
	// Temperature in [0, 1]. Zero is sent as "unset" and the provider
	// default applies.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for a structured reply. Name doubles as the
// schema or tool name on the wire and as the validator cache key, so it
// must be unique per definition, e.g. "quiz-output".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that actually served the call
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
