package cinesnap

import (
	"time"

	"github.com/darkostanimirovic/cinesnap/internal/logging"
	"github.com/darkostanimirovic/cinesnap/providers"
)

type promptLogEntry struct {
	Timestamp    time.Time           `json:"timestamp"`
	SessionID    string              `json:"session_id"`
	Phase        Phase               `json:"phase"`
	Model        string              `json:"model"`
	SystemPrompt string              `json:"system_prompt"`
	Messages     []providers.Message `json:"messages"`
	Tools        []string            `json:"tools,omitempty"`
}

// logPrompt appends the outgoing request to the prompt log when enabled.
func (a *Assistant) logPrompt(phase Phase, req providers.CompletionRequest) {
	if !a.loggingConfig.LogPrompts {
		return
	}

	entry := promptLogEntry{
		Timestamp:    time.Now().UTC(),
		SessionID:    a.sessionID,
		Phase:        phase,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
	}
	for _, t := range req.Tools {
		entry.Tools = append(entry.Tools, t.Name)
	}

	var payload any = entry
	if a.loggingConfig.RedactSensitive {
		payload = logging.Redact(entry)
	}
	if err := logging.WriteJSONLine(logging.PromptLogPath(a.loggingConfig), payload); err != nil {
		a.logger.Warn("failed to write prompt log", "error", err)
	}
}

// logResponse summarizes a model response when enabled.
func (a *Assistant) logResponse(phase Phase, resp *providers.CompletionResponse) {
	if !a.loggingConfig.LogResponses || resp == nil {
		return
	}
	a.logger.Info("model response",
		"phase", phase,
		"model", resp.Model,
		"finish_reason", resp.FinishReason,
		"tool_calls", len(resp.ToolCalls),
		"content_chars", len(resp.Content),
		"total_tokens", resp.Usage.TotalTokens,
	)
}
