package cinesnap

import (
	"github.com/darkostanimirovic/cinesnap/internal/conversation"
)

// Type aliases for the transcript types shared with the store drivers.
type (
	Turn            = conversation.Turn
	Role            = conversation.Role
	Transcript      = conversation.Transcript
	TranscriptStore = conversation.Store
)

const (
	RoleUser      = conversation.RoleUser
	RoleAssistant = conversation.RoleAssistant
)

// Function re-exports for convenience.
var (
	NewMemoryTranscriptStore = conversation.NewMemoryStore
	ErrTranscriptNotFound    = conversation.ErrTranscriptNotFound
)
