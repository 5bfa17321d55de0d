package llm

import (
	"context"
	"sync"
)

// MockBackend replays scripted responses in call order and records every
// request. When the script runs out, the last entry repeats.
type MockBackend struct {
	Requests  []GenerateRequest
	responses []MockResponse
	mu        sync.Mutex
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Err      error
	Response string
}

// NewMockBackend creates a backend that answers with responses in order.
func NewMockBackend(responses ...MockResponse) *MockBackend {
	return &MockBackend{responses: responses}
}

// Generate records req and returns the next scripted response.
func (m *MockBackend) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Requests)
	m.Requests = append(m.Requests, req)

	if err := ctx.Err(); err != nil {
		return GenerateResponse{}, err
	}
	if len(m.responses) == 0 {
		return GenerateResponse{}, nil
	}
	if call >= len(m.responses) {
		call = len(m.responses) - 1
	}
	r := m.responses[call]
	if r.Err != nil {
		return GenerateResponse{}, r.Err
	}
	return GenerateResponse{Response: r.Response}, nil
}

// Calls returns how many requests were made.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// Prompts returns the prompts sent so far.
func (m *MockBackend) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompts := make([]string, len(m.Requests))
	for i, r := range m.Requests {
		prompts[i] = r.Prompt
	}
	return prompts
}
