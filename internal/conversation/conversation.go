// Package conversation holds the transcript types shared by the assistant
// and its persistence drivers.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrTranscriptNotFound is returned when no transcript is stored under an id.
var ErrTranscriptNotFound = errors.New("cinesnap: transcript not found")

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one immutable entry of the dialogue.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the persisted form of a session.
type Transcript struct {
	ID         string          `json:"id"`
	Generation uint64          `json:"generation"`
	Turns      []Turn          `json:"turns"`
	Context    json.RawMessage `json:"context,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Clone returns a deep copy so callers never share backing arrays.
func (t Transcript) Clone() Transcript {
	out := t
	if t.Turns != nil {
		out.Turns = append([]Turn(nil), t.Turns...)
	}
	if t.Context != nil {
		out.Context = append(json.RawMessage(nil), t.Context...)
	}
	return out
}

// Store persists transcripts.
type Store interface {
	// Save replaces the transcript stored under t.ID.
	Save(ctx context.Context, t Transcript) error

	// Load retrieves a transcript by id.
	Load(ctx context.Context, id string) (Transcript, error)

	// Delete removes a transcript. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
