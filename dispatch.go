package cinesnap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/providers"
)

// ToolResult is the evidence one tool call feeds back to the model.
type ToolResult struct {
	CallID  string
	Name    string
	Kind    ToolKind // zero for unknown tools
	Payload any
	Movies  []catalog.MovieSummary
	Err     error
}

// PayloadJSON renders the payload for the model.
func (r ToolResult) PayloadJSON() string {
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return `{"error":"unserializable result"}`
	}
	return string(data)
}

type genresPayload struct {
	Genres map[string]string `json:"genres"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// assignCallIDs gives every call a stable id so results pair with requests.
func assignCallIDs(calls []providers.ToolCall) []providers.ToolCall {
	out := make([]providers.ToolCall, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			call.ID = "call_" + strconv.Itoa(i)
		}
		out[i] = call
	}
	return out
}

// dispatchTools runs every call concurrently, bounded by MaxConcurrentTools.
// Results are indexed by request position, so the merge order never depends
// on which call returns first.
func (a *Assistant) dispatchTools(ctx context.Context, calls []providers.ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))

	var g errgroup.Group
	g.SetLimit(a.maxConcurrentTools)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = a.runTool(ctx, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Assistant) runTool(ctx context.Context, call providers.ToolCall) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name}

	req, err := ParseToolCall(call)
	if err != nil {
		// Validation failures stay inside the turn.
		a.logger.Warn("rejected tool call", "tool", call.Name, "error", err)
		label := "unknown"
		payload := errorPayload{Error: "unknown tool"}
		if errors.Is(err, ErrInvalidArguments) {
			label = call.Name
			payload = errorPayload{Error: err.Error()}
		}
		a.applyToolComplete(a.applyToolStart(ctx, label, call.Arguments), label, 0, err)
		result.Payload = payload
		result.Err = err
		return result
	}
	result.Kind = req.Kind

	ctx = a.applyToolStart(ctx, req.Kind.String(), req.Args)
	spanCtx, endSpan := a.tracer.StartSpan(ctx, "tool."+req.Kind.String(),
		WithSpanType(SpanTypeTool),
		WithSpanInput(req.Args),
	)
	defer endSpan()

	toolCtx, cancel := context.WithTimeout(spanCtx, a.timeouts.ToolCall)
	defer cancel()

	payload, movies, err := a.executeTool(toolCtx, req)
	if err != nil {
		// A failed catalog call contributes nothing; the turn goes on.
		err = &TransportError{Phase: PhaseTool, Tool: req.Kind.String(), Err: err}
		a.logger.Warn("tool call failed", "tool", req.Kind.String(), "error", err)
		result.Payload = errorPayload{Error: "catalog request failed"}
		result.Err = err
	} else {
		result.Payload = payload
		result.Movies = movies
		if a.loggingConfig.LogToolCalls {
			a.logger.Info("tool call completed", "tool", req.Kind.String(), "movies", len(movies))
		}
	}

	_ = a.tracer.SetSpanAttributes(spanCtx, map[string]any{"movies": len(result.Movies)})
	a.applyToolComplete(ctx, req.Kind.String(), len(result.Movies), result.Err)
	return result
}

// executeTool maps each kind onto its catalog call. The switch covers every
// ToolKind; adding a kind without a case falls through to the error below.
func (a *Assistant) executeTool(ctx context.Context, req ToolRequest) (any, []catalog.MovieSummary, error) {
	var (
		page *catalog.Page
		err  error
	)

	switch req.Kind {
	case ToolSearchMovies:
		args := req.Args.(SearchArgs)
		page, err = a.catalog.Search(ctx, args.Query, args.Page)
	case ToolMoviesByGenre:
		args := req.Args.(GenreArgs)
		page, err = a.catalog.DiscoverByGenre(ctx, args.GenreID, args.SortBy, args.Page)
	case ToolPopular:
		page, err = a.catalog.List(ctx, catalog.CategoryPopular, req.Args.(PageArgs).Page)
	case ToolTopRated:
		page, err = a.catalog.List(ctx, catalog.CategoryTopRated, req.Args.(PageArgs).Page)
	case ToolUpcoming:
		page, err = a.catalog.List(ctx, catalog.CategoryUpcoming, req.Args.(PageArgs).Page)
	case ToolNowPlaying:
		page, err = a.catalog.List(ctx, catalog.CategoryNowPlaying, req.Args.(PageArgs).Page)
	case ToolListGenres:
		genres, err := a.catalog.Genres(ctx)
		if err != nil {
			return nil, nil, err
		}
		byID := make(map[string]string, len(genres))
		for _, g := range genres {
			byID[strconv.Itoa(g.ID)] = g.Name
		}
		return genresPayload{Genres: byID}, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownTool, req.Kind)
	}

	if err != nil {
		return nil, nil, err
	}
	if page == nil {
		page = &catalog.Page{}
	}
	return page, page.Results, nil
}

// collectMovies concatenates results in request order up to limit.
func collectMovies(results []ToolResult, limit int) []catalog.MovieSummary {
	var movies []catalog.MovieSummary
	for _, r := range results {
		for _, m := range r.Movies {
			if len(movies) >= limit {
				return movies
			}
			movies = append(movies, m)
		}
	}
	return movies
}
