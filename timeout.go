package cinesnap

import (
	"time"
)

// TimeoutConfig bounds every blocking step of a turn.
type TimeoutConfig struct {
	Turn      time.Duration // Whole turn, both model calls and all tool calls
	ModelCall time.Duration // Each language-model request
	ToolCall  time.Duration // Each catalog request
}

// DefaultTimeoutConfig returns the default bounds.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Turn:      60 * time.Second,
		ModelCall: 20 * time.Second,
		ToolCall:  8 * time.Second,
	}
}

// withDefaults replaces unset or negative values so no timeout is infinite.
func (tc TimeoutConfig) withDefaults() TimeoutConfig {
	def := DefaultTimeoutConfig()
	if tc.Turn <= 0 {
		tc.Turn = def.Turn
	}
	if tc.ModelCall <= 0 {
		tc.ModelCall = def.ModelCall
	}
	if tc.ToolCall <= 0 {
		tc.ToolCall = def.ToolCall
	}
	return tc
}
