// Package middleware provides hooks into turn execution for observability.
package middleware

import (
	"context"
	"time"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// TurnOutcome summarizes a finished turn.
type TurnOutcome struct {
	Status    string // "finished" or "failed"
	Movies    int
	ToolCalls int
	Fallback  bool // templated reply was used
	Discarded bool // session was reset while the turn ran
	Duration  time.Duration
}

// Middleware provides hooks into turn execution. Start hooks run in
// registration order and may decorate the context; completion hooks run in
// reverse order.
type Middleware interface {
	OnTurnStart(ctx context.Context, text string) context.Context
	OnTurnComplete(ctx context.Context, outcome TurnOutcome, err error)
	OnModelCall(ctx context.Context, phase string, req providers.CompletionRequest) context.Context
	OnModelResponse(ctx context.Context, phase string, resp *providers.CompletionResponse, err error)
	OnToolStart(ctx context.Context, tool string, args any) context.Context
	OnToolComplete(ctx context.Context, tool string, movies int, err error)
}

// BaseMiddleware provides no-op implementations for Middleware.
// Embed this in custom middleware to implement only the hooks you need.
type BaseMiddleware struct{}

func (BaseMiddleware) OnTurnStart(ctx context.Context, _ string) context.Context { return ctx }
func (BaseMiddleware) OnTurnComplete(context.Context, TurnOutcome, error)         {}
func (BaseMiddleware) OnModelCall(ctx context.Context, _ string, _ providers.CompletionRequest) context.Context {
	return ctx
}
func (BaseMiddleware) OnModelResponse(context.Context, string, *providers.CompletionResponse, error) {
}
func (BaseMiddleware) OnToolStart(ctx context.Context, _ string, _ any) context.Context {
	return ctx
}
func (BaseMiddleware) OnToolComplete(context.Context, string, int, error) {}
