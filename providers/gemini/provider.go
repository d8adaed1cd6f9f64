// Package gemini implements the Provider interface for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// Config holds Gemini client settings.
type Config struct {
	APIKey  string
	BaseURL string
}

// Provider implements providers.Provider for Gemini.
type Provider struct {
	client *genai.Client
	logger *slog.Logger
}

// New creates a Gemini provider. The API key is required.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Provider{client: client, logger: logger}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// Complete generates a non-streaming completion.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	contents := convertMessages(req.Messages)
	config := buildConfig(req)

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, classifyError(err)
	}

	return p.convertResponse(req.Model, resp), nil
}

func convertMessages(messages []providers.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case providers.RoleTool:
			// Responses to one batch of function calls share a single user-role content.
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.Name,
					Response: map[string]any{"result": msg.Content},
				},
			}
			if last := len(contents) - 1; last >= 0 && isFunctionResponses(contents[last]) {
				contents[last].Parts = append(contents[last].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{part},
			})
		case providers.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: tc.Arguments,
					},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: parts})
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return contents
}

func isFunctionResponses(c *genai.Content) bool {
	if c.Role != string(genai.RoleUser) || len(c.Parts) == 0 {
		return false
	}
	for _, part := range c.Parts {
		if part.FunctionResponse == nil {
			return false
		}
	}
	return true
}

func buildConfig(req providers.CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}
	if req.TopP > 0 {
		config.TopP = genai.Ptr(req.TopP)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	if len(req.Tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			declarations = append(declarations, &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  convertSchema(tool.Parameters),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	return config
}

func convertSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return nil
	}

	schema := &genai.Schema{}

	if schemaType, ok := params["type"].(string); ok {
		schema.Type = schemaTypes[schemaType]
	}
	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := params["properties"].(map[string]any); ok && len(props) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for key, value := range props {
			if propMap, ok := value.(map[string]any); ok {
				schema.Properties[key] = convertSchema(propMap)
			}
		}
	}
	switch required := params["required"].(type) {
	case []string:
		schema.Required = append(schema.Required, required...)
	case []any:
		for _, field := range required {
			if s, ok := field.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	switch enum := params["enum"].(type) {
	case []string:
		schema.Enum = append(schema.Enum, enum...)
	case []any:
		for _, v := range enum {
			if s, ok := v.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if items, ok := params["items"].(map[string]any); ok {
		schema.Items = convertSchema(items)
	}

	return schema
}

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
}

func (p *Provider) convertResponse(model string, resp *genai.GenerateContentResponse) *providers.CompletionResponse {
	out := &providers.CompletionResponse{
		ID:           resp.ResponseID,
		Model:        model,
		Created:      time.Now(),
		FinishReason: providers.FinishReasonStop,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.Usage = providers.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			out.Content += part.Text
		}
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			out.ToolCalls = append(out.ToolCalls, providers.ToolCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
		}
	}

	if len(out.ToolCalls) > 0 {
		out.FinishReason = providers.FinishReasonToolCalls
	} else if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		out.FinishReason = providers.FinishReasonLength
	}

	return out
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := providers.ErrorFromStatus(apiErr.Code); sentinel != nil {
			return fmt.Errorf("gemini: %w: %s", sentinel, apiErr.Message)
		}
		return fmt.Errorf("gemini: %s (status %d)", apiErr.Message, apiErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini: %w: %v", providers.ErrTimeout, err)
	}
	return fmt.Errorf("gemini: %w", err)
}
