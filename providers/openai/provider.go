// Package openai implements the Provider interface on top of the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// Provider implements providers.Provider for OpenAI-compatible endpoints.
type Provider struct {
	client *goopenai.Client
	logger *slog.Logger
}

// Option customizes the underlying client configuration.
type Option func(*goopenai.ClientConfig)

// WithBaseURL points the provider at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(cfg *goopenai.ClientConfig) {
		if strings.TrimSpace(baseURL) != "" {
			cfg.BaseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *goopenai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// New creates a new OpenAI provider.
func New(apiKey string, logger *slog.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := goopenai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Complete generates a non-streaming completion.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	apiReq := p.toAPIRequest(req)

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response %s", resp.ID)
	}

	return p.fromAPIResponse(resp), nil
}

// toAPIRequest converts a provider-agnostic request to the chat completions format.
func (p *Provider) toAPIRequest(req providers.CompletionRequest) goopenai.ChatCompletionRequest {
	apiReq := goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, p.toAPIMessage(msg))
	}
	apiReq.Messages = messages

	if len(req.Tools) > 0 {
		apiReq.Tools = toAPITools(req.Tools)
	}

	return apiReq
}

func (p *Provider) toAPIMessage(msg providers.Message) goopenai.ChatCompletionMessage {
	switch msg.Role {
	case providers.RoleTool:
		return goopenai.ChatCompletionMessage{
			Role:       goopenai.ChatMessageRoleTool,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
	case providers.RoleAssistant:
		out := goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleAssistant,
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				p.logger.Warn("dropping unserializable tool call arguments", "tool", tc.Name, "error", err)
				args = []byte("{}")
			}
			out.ToolCalls = append(out.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		return out
	default:
		return goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleUser,
			Content: msg.Content,
		}
	}
}

func toAPITools(tools []providers.ToolDefinition) []goopenai.Tool {
	apiTools := make([]goopenai.Tool, len(tools))
	for i, t := range tools {
		apiTools[i] = goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return apiTools
}

// fromAPIResponse converts the first choice into a provider-agnostic response.
func (p *Provider) fromAPIResponse(resp goopenai.ChatCompletionResponse) *providers.CompletionResponse {
	choice := resp.Choices[0]
	out := &providers.CompletionResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Content: choice.Message.Content,
		Created: time.Unix(resp.Created, 0),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				// Keep the call so the orchestrator records it as malformed.
				p.logger.Warn("malformed tool call arguments", "tool", tc.Function.Name, "error", err)
				args = nil
			}
		}
		out.ToolCalls = append(out.ToolCalls, providers.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	switch choice.FinishReason {
	case goopenai.FinishReasonToolCalls, goopenai.FinishReasonFunctionCall:
		out.FinishReason = providers.FinishReasonToolCalls
	case goopenai.FinishReasonLength:
		out.FinishReason = providers.FinishReasonLength
	default:
		out.FinishReason = providers.FinishReasonStop
	}
	if len(out.ToolCalls) > 0 {
		out.FinishReason = providers.FinishReasonToolCalls
	}

	return out
}

// classifyError wraps API errors with the retryable sentinels.
func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := providers.ErrorFromStatus(apiErr.HTTPStatusCode); sentinel != nil {
			return fmt.Errorf("openai: %w: %s", sentinel, apiErr.Message)
		}
		return fmt.Errorf("openai: %s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if sentinel := providers.ErrorFromStatus(reqErr.HTTPStatusCode); sentinel != nil {
			return fmt.Errorf("openai: %w: %v", sentinel, reqErr.Err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: %w: %v", providers.ErrTimeout, err)
	}
	return fmt.Errorf("openai: %w", err)
}
