package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	mu       sync.Mutex
	calls    int
	requests []driven.ToolRequest

	CallToolFn func(ctx context.Context, req driven.ToolRequest) ([]driven.ToolCall, error)
}

// NewMockLLMService creates a mock that answers every request with the given calls
func NewMockLLMService(calls ...driven.ToolCall) *MockLLMService {
	return &MockLLMService{
		CallToolFn: func(ctx context.Context, req driven.ToolRequest) ([]driven.ToolCall, error) {
			return calls, nil
		},
	}
}

func (m *MockLLMService) CallTool(ctx context.Context, req driven.ToolRequest) ([]driven.ToolCall, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CallToolFn != nil {
		return m.CallToolFn(ctx, req)
	}
	return nil, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or an empty one
func (m *MockLLMService) LastRequest() driven.ToolRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return driven.ToolRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// ToolCallJSON builds a tool call whose arguments are v marshalled to JSON
func ToolCallJSON(name string, v any) driven.ToolCall {
	data, _ := json.Marshal(v)
	return driven.ToolCall{Name: name, Arguments: data}
}
