package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned answer of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockJSON marshals v into a canned answer. It panics if v cannot be
// marshalled, which only happens with broken test fixtures.
func MockJSON(v any) MockResponse {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{Content: raw, Usage: usage(len(raw)/4, len(raw)/4)}
}

// MockProvider replays canned responses in order and records requests.
// Structured responses are validated like a real provider would.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next response. An empty queue reports the provider as
// unavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return finish(req, &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: "end",
	})
}

func (m *MockProvider) ModelID() string { return "mock" }

// Push queues more responses.
func (m *MockProvider) Push(resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resps...)
}

// Calls returns the requests seen so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
