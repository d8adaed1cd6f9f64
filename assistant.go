// Package cinesnap is a conversational movie recommender. An Assistant turns
// one user utterance into one Reply, calling catalog tools on the model's
// behalf and keeping a generation-stamped transcript of the conversation.
package cinesnap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/internal/logging"
	"github.com/darkostanimirovic/cinesnap/internal/retry"
	"github.com/darkostanimirovic/cinesnap/middleware"
	"github.com/darkostanimirovic/cinesnap/providers"
)

// Assistant orchestrates one conversation. Create one per chat widget.
type Assistant struct {
	provider           providers.Provider
	catalog            catalog.Catalog
	model              string
	temperature        float32
	topP               float32
	maxTokens          int
	movieCap           int
	suggestionCount    int
	maxConcurrentTools int
	sessionID          string
	session            *Session
	store              TranscriptStore
	retryConfig        RetryConfig
	timeouts           TimeoutConfig
	loggingConfig      LoggingConfig
	logger             *slog.Logger
	tracer             Tracer
	middlewares        []middleware.Middleware

	// rng is only touched inside a turn, which single-flight serializes.
	rng *rand.Rand

	inFlight atomic.Bool

	mu         sync.Mutex
	closed     bool
	cancelTurn context.CancelFunc

	persistMu sync.Mutex
}

// New creates an assistant. It fails fast on invalid configuration.
func New(cfg Config) (*Assistant, error) {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MovieCap == 0 {
		cfg.MovieCap = defaultMovieCap
	}
	if cfg.SuggestionCount == 0 {
		cfg.SuggestionCount = defaultSuggestionCount
	}
	if cfg.MaxConcurrentTools == 0 {
		cfg.MaxConcurrentTools = defaultMaxConcurrentTools
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assistant config: %w", err)
	}

	loggingConfig := DefaultLoggingConfig()
	if cfg.Logging != nil {
		loggingConfig = *cfg.Logging
	}

	retryConfig := DefaultRetryConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}

	timeouts := DefaultTimeoutConfig()
	if cfg.Timeout != nil {
		timeouts = cfg.Timeout.withDefaults()
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	logger := logging.ResolveLogger(loggingConfig).With("session_id", sessionID)
	if retryConfig.Logger == nil {
		retryConfig.Logger = logger
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = &NoOpTracer{}
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	session := NewSession()
	if cfg.InitialContext != nil {
		_ = session.MergeContext(session.Generation(), *cfg.InitialContext)
	}

	return &Assistant{
		provider:           cfg.Provider,
		catalog:            cfg.Catalog,
		model:              cfg.Model,
		temperature:        cfg.Temperature,
		topP:               cfg.TopP,
		maxTokens:          cfg.MaxTokens,
		movieCap:           cfg.MovieCap,
		suggestionCount:    cfg.SuggestionCount,
		maxConcurrentTools: cfg.MaxConcurrentTools,
		sessionID:          sessionID,
		session:            session,
		store:              cfg.Store,
		retryConfig:        retryConfig,
		timeouts:           timeouts,
		loggingConfig:      loggingConfig,
		logger:             logger,
		tracer:             tracer,
		rng:                rng,
	}, nil
}

// Use registers middleware. Call it before the first turn.
func (a *Assistant) Use(m middleware.Middleware) {
	if m == nil {
		return
	}
	a.middlewares = append(a.middlewares, m)
}

// SessionID returns the id the transcript is persisted under.
func (a *Assistant) SessionID() string {
	return a.sessionID
}

// History returns a copy of the transcript.
func (a *Assistant) History() []Turn {
	return a.session.Snapshot()
}

// UserContext returns a copy of the preference context.
func (a *Assistant) UserContext() UserContext {
	return a.session.Context()
}

// UpdateContext merges patch into the preference context outside a turn.
func (a *Assistant) UpdateContext(ctx context.Context, patch UserContext) error {
	if a.isClosed() {
		return ErrAssistantClosed
	}
	gen := a.session.Generation()
	if err := a.session.MergeContext(gen, patch); err != nil {
		return err
	}
	a.persist(ctx, gen)
	return nil
}

// ResetSession clears transcript and context. A turn in flight keeps running,
// but its result is not recorded.
func (a *Assistant) ResetSession() {
	gen := a.session.Reset()
	a.logger.Debug("session reset", "generation", gen)

	if a.store == nil {
		return
	}
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeouts.ToolCall)
	defer cancel()
	if err := a.store.Delete(ctx, a.sessionID); err != nil {
		a.logger.Warn("failed to delete transcript", "error", err)
	}
}

// Restore loads the persisted transcript, if any, into the session.
func (a *Assistant) Restore(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	if !a.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInProgress
	}
	defer a.inFlight.Store(false)

	gen := a.session.Generation()
	t, err := a.store.Load(ctx, a.sessionID)
	if errors.Is(err, ErrTranscriptNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	var uc UserContext
	if len(t.Context) > 0 {
		if err := json.Unmarshal(t.Context, &uc); err != nil {
			return fmt.Errorf("decode transcript context: %w", err)
		}
	}
	return a.session.load(gen, t.Turns, uc)
}

// Close cancels the turn in flight and discards the session. Further turns
// are rejected with ErrAssistantClosed. The persisted transcript is kept.
func (a *Assistant) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cancel := a.cancelTurn
	a.mu.Unlock()

	a.session.Reset()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (a *Assistant) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// HandleTurn converts one utterance into one reply. For an accepted turn it
// always returns a non-nil Reply and a nil error; failures of the model or
// catalog are reported through the Reply. It returns an error only when the
// turn is rejected: ErrEmptyMessage, ErrTurnInProgress or ErrAssistantClosed.
func (a *Assistant) HandleTurn(ctx context.Context, text string, patch *UserContext) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, ErrTurnInProgress
	}
	defer a.inFlight.Store(false)

	turnCtx, cancel, err := a.beginTurn(ctx)
	if err != nil {
		return nil, err
	}
	defer a.endTurn(cancel)

	start := time.Now()
	turnCtx = a.applyTurnStart(turnCtx, text)
	turnCtx, endTrace := a.tracer.StartTrace(turnCtx, "turn",
		WithSessionID(a.sessionID),
		WithTraceInput(text),
	)
	defer endTrace()

	reply, toolCalls, turnErr := a.runTurn(turnCtx, text, patch)

	_ = a.tracer.SetSpanOutput(turnCtx, reply)
	a.applyTurnComplete(turnCtx, middleware.TurnOutcome{
		Status:    string(reply.Status),
		Movies:    len(reply.Movies),
		ToolCalls: toolCalls,
		Fallback:  reply.Fallback,
		Discarded: reply.Discarded,
		Duration:  time.Since(start),
	}, turnErr)

	return reply, nil
}

func (a *Assistant) beginTurn(ctx context.Context) (context.Context, context.CancelFunc, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, nil, ErrAssistantClosed
	}
	turnCtx, cancel := context.WithTimeout(ctx, a.timeouts.Turn)
	a.cancelTurn = cancel
	return turnCtx, cancel, nil
}

func (a *Assistant) endTurn(cancel context.CancelFunc) {
	a.mu.Lock()
	a.cancelTurn = nil
	a.mu.Unlock()
	cancel()
}

// runTurn drives Started -> ModelCall1 -> {DirectAnswer | ToolDispatch ->
// ModelCall2} -> Finished | Failed and commits the result. The error is the
// internal cause reported to middleware; it never escapes HandleTurn.
func (a *Assistant) runTurn(ctx context.Context, text string, patch *UserContext) (*Reply, int, error) {
	gen := a.session.Generation()
	userTurn := newTurn(RoleUser, text)

	history, uc, err := a.session.begin(gen, patch, userTurn)
	if err != nil {
		// Reset raced the start of the turn. Answer from the utterance alone;
		// the commit below will be discarded for the same reason.
		history = []Turn{userTurn}
		uc = UserContext{}
		if patch != nil {
			uc = uc.Merge(*patch)
		}
	}

	req := providers.CompletionRequest{
		Model:        a.model,
		SystemPrompt: buildSystemPrompt(uc),
		Messages:     historyMessages(history),
		Tools:        ToolDefinitions(),
		Temperature:  a.temperature,
		TopP:         a.topP,
		MaxTokens:    a.maxTokens,
	}

	var (
		reply     *Reply
		toolCalls int
		turnErr   error
	)

	first, err := a.callModel(ctx, PhaseModelCall1, req, a.retryConfig)
	switch {
	case err != nil:
		a.logger.Error("turn failed", "error", err)
		reply, turnErr = failedReply(), err

	case len(first.ToolCalls) == 0:
		message := strings.TrimSpace(first.Content)
		if message == "" {
			a.logger.Error("turn failed", "error", ErrEmptyModelAnswer)
			reply, turnErr = failedReply(), ErrEmptyModelAnswer
			break
		}
		reply = &Reply{
			Message:       message,
			Suggestions:   pickSuggestions(a.rng, a.suggestionCount),
			NeedsMoreInfo: needsMoreInfo(message),
			Status:        StatusFinished,
		}

	default:
		toolCalls = len(first.ToolCalls)
		reply, turnErr = a.answerWithTools(ctx, req, first)
	}

	a.commit(ctx, gen, text, patch, reply)
	return reply, toolCalls, turnErr
}

// answerWithTools runs ToolDispatch and ModelCall2, falling back to a
// templated message when the second call fails.
func (a *Assistant) answerWithTools(ctx context.Context, req providers.CompletionRequest, first *providers.CompletionResponse) (*Reply, error) {
	calls := assignCallIDs(first.ToolCalls)
	resolved := *first
	resolved.ToolCalls = calls

	results := a.dispatchTools(ctx, calls)
	movies := collectMovies(results, a.movieCap)

	followUp := req
	followUp.Messages = followUpMessages(req.Messages, &resolved, results)
	followUp.Tools = nil

	noRetry := a.retryConfig
	noRetry.MaxRetries = 0

	var (
		message  string
		fallback bool
		turnErr  error
	)
	second, err := a.callModel(ctx, PhaseModelCall2, followUp, noRetry)
	if err == nil {
		message = strings.TrimSpace(second.Content)
		if message == "" {
			err = ErrEmptyModelAnswer
		}
	}
	if err != nil {
		a.logger.Warn("using templated reply", "error", fmt.Errorf("%w: %w", ErrExhaustedFallback, err))
		message = templatedMessage(movies)
		fallback = true
		turnErr = ErrExhaustedFallback
	}

	return &Reply{
		Message:       message,
		Movies:        movies,
		Suggestions:   pickSuggestions(a.rng, a.suggestionCount),
		NeedsMoreInfo: !fallback && needsMoreInfo(message),
		Status:        StatusFinished,
		Fallback:      fallback,
	}, turnErr
}

// commit records the assistant turn unless the session moved on.
func (a *Assistant) commit(ctx context.Context, gen uint64, text string, patch *UserContext, reply *Reply) {
	var inferred *UserContext
	if patch == nil || patch.Mood == nil {
		if mood, ok := inferMood(text); ok {
			inferred = &UserContext{Mood: Ptr(mood)}
		}
	}

	err := a.session.Commit(gen, newTurn(RoleAssistant, reply.Message), inferred)
	if errors.Is(err, ErrStaleSession) {
		a.logger.Info("discarding stale turn result", "generation", gen)
		reply.Discarded = true
		return
	}
	if err != nil {
		a.logger.Error("failed to commit turn", "error", err)
		return
	}
	a.persist(ctx, gen)
}

// persist saves the session as written at generation gen. Saves are
// serialized with ResetSession's delete and skipped once the session has
// moved past gen, so a reset is never undone.
func (a *Assistant) persist(ctx context.Context, gen uint64) {
	if a.store == nil {
		return
	}
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	current, turns, uc := a.session.state()
	if current != gen {
		a.logger.Debug("skipping save of reset session", "generation", gen)
		return
	}
	encoded, err := json.Marshal(uc)
	if err != nil {
		a.logger.Warn("failed to encode context", "error", err)
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeouts.ToolCall)
	defer cancel()
	err = a.store.Save(saveCtx, Transcript{
		ID:         a.sessionID,
		Generation: gen,
		Turns:      turns,
		Context:    encoded,
	})
	if err != nil {
		a.logger.Warn("failed to persist transcript", "error", err)
	}
}

// callModel issues one model request with the per-call timeout.
func (a *Assistant) callModel(ctx context.Context, phase Phase, req providers.CompletionRequest, retryConfig RetryConfig) (*providers.CompletionResponse, error) {
	ctx = a.applyModelCall(ctx, string(phase), req)
	a.logPrompt(phase, req)

	start := time.Now()
	resp, err := retry.WithRetry(ctx, retryConfig, func(ctx context.Context) (*providers.CompletionResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.timeouts.ModelCall)
		defer cancel()
		return a.provider.Complete(callCtx, req)
	})
	if err == nil && resp == nil {
		err = errors.New("provider returned no response")
	}

	a.applyModelResponse(ctx, string(phase), resp, err)
	a.traceGeneration(ctx, phase, req, resp, err, start)

	if err != nil {
		return nil, &TransportError{Phase: phase, Err: err}
	}
	a.logResponse(phase, resp)
	return resp, nil
}

func (a *Assistant) traceGeneration(ctx context.Context, phase Phase, req providers.CompletionRequest, resp *providers.CompletionResponse, err error, start time.Time) {
	opts := GenerationOptions{
		Name:  string(phase),
		Model: req.Model,
		ModelParameters: map[string]any{
			"temperature": req.Temperature,
			"top_p":       req.TopP,
			"max_tokens":  req.MaxTokens,
		},
		Input:     req.Messages,
		StartTime: start,
		EndTime:   time.Now(),
		Level:     LogLevelDefault,
	}
	if resp != nil {
		opts.Output = resp.Content
		opts.Usage = &UsageInfo{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	if err != nil {
		opts.Level = LogLevelError
		opts.StatusMessage = err.Error()
	}
	_ = a.tracer.LogGeneration(ctx, opts)
}

// Middleware application methods
func (a *Assistant) applyTurnStart(ctx context.Context, text string) context.Context {
	for _, m := range a.middlewares {
		ctx = m.OnTurnStart(ctx, text)
	}
	return ctx
}

func (a *Assistant) applyTurnComplete(ctx context.Context, outcome middleware.TurnOutcome, err error) {
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		a.middlewares[i].OnTurnComplete(ctx, outcome, err)
	}
}

func (a *Assistant) applyModelCall(ctx context.Context, phase string, req providers.CompletionRequest) context.Context {
	for _, m := range a.middlewares {
		ctx = m.OnModelCall(ctx, phase, req)
	}
	return ctx
}

func (a *Assistant) applyModelResponse(ctx context.Context, phase string, resp *providers.CompletionResponse, err error) {
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		a.middlewares[i].OnModelResponse(ctx, phase, resp, err)
	}
}

func (a *Assistant) applyToolStart(ctx context.Context, tool string, args any) context.Context {
	for _, m := range a.middlewares {
		ctx = m.OnToolStart(ctx, tool, args)
	}
	return ctx
}

func (a *Assistant) applyToolComplete(ctx context.Context, tool string, movies int, err error) {
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		a.middlewares[i].OnToolComplete(ctx, tool, movies, err)
	}
}
