// Package mock implements a scripted Provider for testing.
package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// ErrNoResponse is returned when Complete is called with nothing scripted.
var ErrNoResponse = errors.New("mock: no response configured")

// ResponseFunc computes a response on demand. It lets tests block on the
// context or inspect the request.
type ResponseFunc func(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error)

// Provider implements providers.Provider for testing.
type Provider struct {
	mu        sync.Mutex
	steps     []ResponseFunc
	requests  []providers.CompletionRequest
	callCount int
}

// New creates a new mock provider.
func New() *Provider {
	return &Provider{}
}

// WithResponse appends a scripted completion response.
func (m *Provider) WithResponse(content string, toolCalls []providers.ToolCall) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp := &providers.CompletionResponse{
		ID:           fmt.Sprintf("mock-resp-%d", len(m.steps)+1),
		Content:      content,
		ToolCalls:    toolCalls,
		FinishReason: providers.FinishReasonStop,
		Model:        "mock-model",
		Created:      time.Now(),
		Usage: providers.TokenUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
	}
	if len(toolCalls) > 0 {
		resp.FinishReason = providers.FinishReasonToolCalls
	}

	m.steps = append(m.steps, func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return resp, nil
	})
	return m
}

// WithError appends a scripted failure.
func (m *Provider) WithError(err error) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return nil, err
	})
	return m
}

// WithFunc appends a computed step.
func (m *Provider) WithFunc(fn ResponseFunc) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, fn)
	return m
}

// Name returns the provider name.
func (m *Provider) Name() string {
	return "mock"
}

// Complete runs the next scripted step.
func (m *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	if len(m.steps) == 0 {
		m.mu.Unlock()
		return nil, ErrNoResponse
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	m.mu.Unlock()

	// Run outside the lock so a blocking step does not stall CallCount.
	return step(ctx, req)
}

// CallCount returns the number of times Complete was called.
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of every request received so far.
func (m *Provider) Requests() []providers.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]providers.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Remaining reports how many scripted steps are left.
func (m *Provider) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}
