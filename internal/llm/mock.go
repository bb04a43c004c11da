package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. Err takes precedence over Content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Model   string // reported model, "mock" when empty
	Err     error
}

// MockCall is a request seen by MockProvider together with the labels its
// context carried.
type MockCall struct {
	Request
	Purpose   string
	RequestID string
}

// MockProvider replays scripted replies in order. Once the script runs out
// every call fails with ErrProviderUnavailable, which callers treat like an
// unreachable service.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []MockCall
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{
		Request:   req,
		Purpose:   PurposeFrom(ctx),
		RequestID: RequestIDFrom(ctx),
	})

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	model := next.Model
	if model == "" {
		model = m.ModelID()
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      model,
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Purposes lists the purpose label of every call so far, in order.
func (m *MockProvider) Purposes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Purpose
	}
	return out
}
