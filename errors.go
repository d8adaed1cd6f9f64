package cinesnap

import (
	"errors"
	"fmt"
)

// Configuration errors returned by Config.Validate.
var (
	ErrMissingProvider        = errors.New("cinesnap: Provider is required")
	ErrMissingCatalog         = errors.New("cinesnap: Catalog is required")
	ErrMissingModel           = errors.New("cinesnap: Model is required")
	ErrInvalidTemperature     = errors.New("cinesnap: Temperature must be between 0.0 and 2.0")
	ErrInvalidTopP            = errors.New("cinesnap: TopP must be between 0.0 and 1.0")
	ErrInvalidMaxTokens       = errors.New("cinesnap: MaxTokens must not be negative")
	ErrInvalidMovieCap        = errors.New("cinesnap: MovieCap must be between 1 and 20")
	ErrInvalidToolConcurrency = errors.New("cinesnap: MaxConcurrentTools must be between 1 and 16")
	ErrInvalidSuggestionCount = errors.New("cinesnap: SuggestionCount must be between 0 and 6")
	ErrInvalidRetries         = errors.New("cinesnap: Retry.MaxRetries must be 0 or 1")
)

// Turn-level errors. HandleTurn returns these only when a turn is not accepted.
var (
	ErrTurnInProgress  = errors.New("cinesnap: already processing a turn")
	ErrEmptyMessage    = errors.New("cinesnap: message text is empty")
	ErrAssistantClosed = errors.New("cinesnap: assistant is closed")
)

// Errors absorbed inside a turn. They surface through logs, middleware and
// the Reply status, never as HandleTurn errors.
var (
	ErrStaleSession      = errors.New("cinesnap: session was reset during the turn")
	ErrEmptyTurn         = errors.New("cinesnap: turn text is empty")
	ErrUnknownTool       = errors.New("cinesnap: unknown tool")
	ErrInvalidArguments  = errors.New("cinesnap: invalid tool arguments")
	ErrEmptyModelAnswer  = errors.New("cinesnap: model returned no text")
	ErrExhaustedFallback = errors.New("cinesnap: final model call failed, using templated reply")
)

// Phase names the external call that failed.
type Phase string

const (
	PhaseModelCall1 Phase = "model_call_1"
	PhaseModelCall2 Phase = "model_call_2"
	PhaseTool       Phase = "tool"
)

// TransportError wraps a failure of the model or catalog API.
type TransportError struct {
	Phase Phase
	Tool  string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("cinesnap: %s %s: %v", e.Phase, e.Tool, e.Err)
	}
	return fmt.Sprintf("cinesnap: %s: %v", e.Phase, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
