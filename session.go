package cinesnap

import (
	"strings"
	"sync"
	"time"

	"github.com/darkostanimirovic/cinesnap/internal/conversation"
)

// Session is a generation-stamped transcript plus preference context.
// Every write names the generation it was computed against; a write whose
// generation no longer matches is rejected with ErrStaleSession.
type Session struct {
	mu         sync.RWMutex
	generation uint64
	turns      []Turn
	context    UserContext
}

// NewSession creates an empty session at generation zero.
func NewSession() *Session {
	return &Session{}
}

// Generation returns the current generation token.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Append adds turns in order. Either all turns are appended or none.
func (s *Session) Append(gen uint64, turns ...Turn) error {
	for _, t := range turns {
		if strings.TrimSpace(t.Text) == "" {
			return ErrEmptyTurn
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStaleSession
	}
	s.turns = append(s.turns, turns...)
	return nil
}

// MergeContext overwrites the keys supplied by patch.
func (s *Session) MergeContext(gen uint64, patch UserContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStaleSession
	}
	s.context = s.context.Merge(patch)
	return nil
}

// Commit appends the assistant turn and merges the inferred context in one step.
func (s *Session) Commit(gen uint64, turn Turn, inferred *UserContext) error {
	if strings.TrimSpace(turn.Text) == "" {
		return ErrEmptyTurn
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStaleSession
	}
	s.turns = append(s.turns, turn)
	if inferred != nil {
		s.context = s.context.Merge(*inferred)
	}
	return nil
}

// Reset clears transcript and context and returns the new generation.
func (s *Session) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.turns = nil
	s.context = UserContext{}
	return s.generation
}

// Snapshot returns a copy of the transcript.
func (s *Session) Snapshot() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Context returns a copy of the preference context.
func (s *Session) Context() UserContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context.Clone()
}

// begin merges the turn's context patch, appends the user turn and returns
// the prompt inputs, all under one lock so a concurrent Reset cannot split them.
func (s *Session) begin(gen uint64, patch *UserContext, turn Turn) ([]Turn, UserContext, error) {
	if strings.TrimSpace(turn.Text) == "" {
		return nil, UserContext{}, ErrEmptyTurn
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, UserContext{}, ErrStaleSession
	}
	if patch != nil {
		s.context = s.context.Merge(*patch)
	}
	s.turns = append(s.turns, turn)

	history := make([]Turn, len(s.turns))
	copy(history, s.turns)
	return history, s.context.Clone(), nil
}

// state captures generation, transcript and context under one lock.
func (s *Session) state() (uint64, []Turn, UserContext) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return s.generation, turns, s.context.Clone()
}

// load replaces the session contents when gen is still current.
func (s *Session) load(gen uint64, turns []Turn, uc UserContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStaleSession
	}
	s.turns = append([]Turn(nil), turns...)
	s.context = uc.Clone()
	return nil
}

func newTurn(role conversation.Role, text string) Turn {
	return Turn{Role: role, Text: text, Timestamp: time.Now()}
}
