// Package logging resolves the slog logger used by the assistant and writes
// the optional JSONL prompt log.
package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const DefaultPromptLogPath = "cinesnap-prompts.log"

// LoggingConfig configures logging behavior for the assistant.
type LoggingConfig struct {
	// Logger overrides the logger if provided.
	Logger *slog.Logger

	// Handler is used to build a logger if Logger is nil.
	Handler slog.Handler

	// Level is used when creating a default handler if Logger and Handler are nil.
	Level slog.Level

	// LogPrompts appends every model request to PromptLogPath as JSON lines.
	LogPrompts bool

	// LogResponses enables logging model response summaries.
	LogResponses bool

	// LogToolCalls enables logging catalog tool call summaries.
	LogToolCalls bool

	// RedactSensitive enables best-effort redaction of sensitive fields in logs.
	RedactSensitive bool

	// PromptLogPath overrides the prompt log file path.
	PromptLogPath string
}

// DefaultLoggingConfig returns default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:           slog.LevelInfo,
		LogPrompts:      false,
		LogResponses:    false,
		LogToolCalls:    true,
		RedactSensitive: true,
	}
}

// Silent returns a copy of the config that discards all output.
func (c LoggingConfig) Silent() *LoggingConfig {
	c.Logger = nil
	c.Handler = slog.NewTextHandler(io.Discard, nil)
	c.LogPrompts = false
	return &c
}

// Verbose returns a copy of the config that logs everything at debug level.
func (c LoggingConfig) Verbose() *LoggingConfig {
	c.Level = slog.LevelDebug
	c.LogResponses = true
	c.LogToolCalls = true
	return &c
}

// ResolveLogger picks Logger, then Handler, then a text handler on stderr.
func ResolveLogger(cfg LoggingConfig) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	if cfg.Handler != nil {
		return slog.New(cfg.Handler)
	}

	level := cfg.Level
	if level == 0 {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// PromptLogPath returns the configured prompt log path or the default.
func PromptLogPath(cfg LoggingConfig) string {
	if strings.TrimSpace(cfg.PromptLogPath) != "" {
		return cfg.PromptLogPath
	}
	return DefaultPromptLogPath
}

var sensitiveKeys = map[string]struct{}{
	"api_key":        {},
	"apikey":         {},
	"authorization":  {},
	"token":          {},
	"password":       {},
	"secret":         {},
	"access_token":   {},
	"refresh_token":  {},
	"client_secret":  {},
	"private_key":    {},
	"session_token":  {},
	"bearer":         {},
	"x-api-key":      {},
	"tmdb_api_key":   {},
	"openai_api_key": {},
	"gemini_api_key": {},
}

// Redact round-trips value through JSON and masks sensitive keys.
func Redact(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return value
	}

	return redactAny(decoded)
}

func redactAny(value any) any {
	switch v := value.(type) {
	case map[string]any:
		redacted := make(map[string]any, len(v))
		for key, val := range v {
			if IsSensitiveKey(key) {
				redacted[key] = "[redacted]"
				continue
			}
			redacted[key] = redactAny(val)
		}
		return redacted
	case []any:
		redacted := make([]any, len(v))
		for i, item := range v {
			redacted[i] = redactAny(item)
		}
		return redacted
	default:
		return value
	}
}

// IsSensitiveKey reports whether key names a credential.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// WriteJSONLine appends payload as one JSON line to path.
func WriteJSONLine(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	safePath, err := sanitizePath(path)
	if err != nil {
		return err
	}

	if err := ensureDir(safePath); err != nil {
		return err
	}

	file, err := os.OpenFile(safePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path sanitized by sanitizePath
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	_, err = file.Write(append(data, '\n'))
	return err
}

func sanitizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("prompt log path is empty")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve prompt log path: %w", err)
	}
	if absPath == string(filepath.Separator) {
		return "", errors.New("prompt log path is invalid")
	}

	return absPath, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create prompt log directory: %w", err)
	}
	return nil
}
