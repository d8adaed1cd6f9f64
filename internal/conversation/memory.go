package conversation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Useful for tests and the chat CLI.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]Transcript
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[string]Transcript)}
}

// Save persists a complete transcript.
func (s *MemoryStore) Save(_ context.Context, t Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.UpdatedAt = time.Now()
	if existing, ok := s.transcripts[t.ID]; ok && t.CreatedAt.IsZero() {
		t.CreatedAt = existing.CreatedAt
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	s.transcripts[t.ID] = t
	return nil
}

// Load retrieves a transcript by id.
func (s *MemoryStore) Load(_ context.Context, id string) (Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transcripts[id]
	if !ok {
		return Transcript{}, ErrTranscriptNotFound
	}
	return t.Clone(), nil
}

// Delete removes a transcript.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, id)
	return nil
}

// Count returns the number of stored transcripts.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts)
}

// Clear removes all transcripts.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = make(map[string]Transcript)
}
