package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darkostanimirovic/cinesnap"
)

// ErrSessionNotFound is returned for ids that are neither live nor persisted.
var ErrSessionNotFound = errors.New("cinesnap: session not found")

// AssistantFactory builds the assistant for one session id.
type AssistantFactory func(sessionID string) (*cinesnap.Assistant, error)

type entry struct {
	assistant *cinesnap.Assistant
	lastUsed  time.Time
}

// Registry owns the live assistants, one per chat session. Sessions that
// were evicted or belong to another instance are restored from the store.
type Registry struct {
	factory AssistantFactory
	store   cinesnap.TranscriptStore
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry. store may be nil, in which case sessions
// live only in memory.
func NewRegistry(factory AssistantFactory, store cinesnap.TranscriptStore, idleTTL time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factory:  factory,
		store:    store,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session seeded with initial.
func (r *Registry) Create(ctx context.Context, initial *cinesnap.UserContext) (string, *cinesnap.Assistant, error) {
	id := uuid.NewString()
	a, err := r.factory(id)
	if err != nil {
		return "", nil, fmt.Errorf("create assistant: %w", err)
	}
	if initial != nil {
		if err := a.UpdateContext(ctx, *initial); err != nil {
			_ = a.Close()
			return "", nil, err
		}
	}

	r.mu.Lock()
	r.sessions[id] = &entry{assistant: a, lastUsed: r.now()}
	r.mu.Unlock()

	r.logger.Info("session created", "session_id", id)
	return id, a, nil
}

// Get returns the live assistant for id, restoring it from the store when
// it is not in memory.
func (r *Registry) Get(ctx context.Context, id string) (*cinesnap.Assistant, error) {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.assistant, nil
	}
	r.mu.Unlock()

	if r.store == nil {
		return nil, ErrSessionNotFound
	}
	if _, err := r.store.Load(ctx, id); err != nil {
		if errors.Is(err, cinesnap.ErrTranscriptNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	a, err := r.factory(id)
	if err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}
	if err := a.Restore(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		// Another request restored it first.
		_ = a.Close()
		e.lastUsed = r.now()
		return e.assistant, nil
	}
	r.sessions[id] = &entry{assistant: a, lastUsed: r.now()}
	r.logger.Info("session restored", "session_id", id, "turns", len(a.History()))
	return a, nil
}

// Delete closes the session, cancelling any turn in flight, and forgets
// its transcript.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.assistant.ResetSession()
		_ = e.assistant.Close()
		return nil
	}
	if r.store == nil {
		return ErrSessionNotFound
	}
	if _, err := r.store.Load(ctx, id); errors.Is(err, cinesnap.ErrTranscriptNotFound) {
		return ErrSessionNotFound
	}
	return r.store.Delete(ctx, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle closes sessions unused for longer than the idle TTL. Their
// transcripts stay in the store.
func (r *Registry) EvictIdle() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*cinesnap.Assistant
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.assistant)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, a := range idle {
		_ = a.Close()
	}
	if len(idle) > 0 {
		r.logger.Info("evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Run evicts idle sessions until ctx is done, then closes the rest.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

// CloseAll closes every live session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range sessions {
		_ = e.assistant.Close()
	}
}
