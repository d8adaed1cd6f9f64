package cinesnap

import (
	"context"

	"github.com/darkostanimirovic/cinesnap/providers"
	mockprovider "github.com/darkostanimirovic/cinesnap/providers/mock"
)

// ToolCall is an alias for providers.ToolCall.
type ToolCall = providers.ToolCall

// MockLLM is a convenience wrapper around providers/mock.Provider for tests
// that script a conversation.
//
// Usage:
//
//	llm := cinesnap.NewMockLLM().
//	    WithToolCall("getPopularMovies", map[string]any{}).
//	    WithFinalResponse("Here are some crowd pleasers!")
//
//	assistant, _ := cinesnap.New(cinesnap.Config{Provider: llm, Catalog: cat})
type MockLLM struct {
	provider *mockprovider.Provider
}

// NewMockLLM creates a new scripted model.
func NewMockLLM() *MockLLM {
	return &MockLLM{provider: mockprovider.New()}
}

// WithResponse appends a response with optional tool calls.
func (m *MockLLM) WithResponse(text string, toolCalls []ToolCall) *MockLLM {
	m.provider.WithResponse(text, toolCalls)
	return m
}

// WithToolCall appends a response that requests a single tool.
func (m *MockLLM) WithToolCall(name string, args map[string]any) *MockLLM {
	m.provider.WithResponse("", []ToolCall{{Name: name, Arguments: args}})
	return m
}

// WithFinalResponse appends a text-only response.
func (m *MockLLM) WithFinalResponse(text string) *MockLLM {
	m.provider.WithResponse(text, nil)
	return m
}

// WithError appends a failing response.
func (m *MockLLM) WithError(err error) *MockLLM {
	m.provider.WithError(err)
	return m
}

// WithFunc appends a computed response.
func (m *MockLLM) WithFunc(fn mockprovider.ResponseFunc) *MockLLM {
	m.provider.WithFunc(fn)
	return m
}

// Requests returns every request the model received.
func (m *MockLLM) Requests() []providers.CompletionRequest {
	return m.provider.Requests()
}

// CallCount returns the number of model calls.
func (m *MockLLM) CallCount() int {
	return m.provider.CallCount()
}

// Complete implements providers.Provider.
func (m *MockLLM) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	return m.provider.Complete(ctx, req)
}

// Name implements providers.Provider.
func (m *MockLLM) Name() string {
	return m.provider.Name()
}
