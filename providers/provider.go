// Package providers defines provider-agnostic interfaces and domain models for language-model calls.
package providers

import (
	"context"
	"errors"
	"time"
)

// Transport failures that callers may retry. Providers wrap these so the
// orchestrator can classify an error with errors.Is.
var (
	ErrRateLimited = errors.New("cinesnap: rate limit exceeded")
	ErrTimeout     = errors.New("cinesnap: request timeout")
	ErrServerError = errors.New("cinesnap: server error (5xx)")
)

// Provider defines the interface for any language-model backend.
// Implementations: OpenAI, Gemini, mocks.
type Provider interface {
	// Complete generates a non-streaming completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini").
	Name() string
}

// CompletionRequest represents a provider-agnostic request for completion.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float32
	TopP         float32
	MaxTokens    int
}

// CompletionResponse represents a provider-agnostic completion response.
type CompletionResponse struct {
	ID           string
	Content      string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        TokenUsage
	Model        string
	Created      time.Time
}

// Message represents a single message in a conversation.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // For tool result messages
	Name       string // Tool name for tool result messages
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolCall represents a model request to execute a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition describes a tool the model may call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonToolCalls FinishReason = "tool_calls"
	FinishReasonLength    FinishReason = "length"
	FinishReasonError     FinishReason = "error"
)

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ErrorFromStatus maps an HTTP status code onto the retryable sentinels.
// It returns nil for statuses that are not worth retrying.
func ErrorFromStatus(status int) error {
	switch {
	case status == 429:
		return ErrRateLimited
	case status == 408 || status == 504:
		return ErrTimeout
	case status >= 500:
		return ErrServerError
	default:
		return nil
	}
}
