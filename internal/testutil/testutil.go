// Package testutil provides testing utilities shared by the cinesnap packages.
// This is an internal package and not part of the public API.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// Movies returns n distinct movies whose ids start at first.
func Movies(first, n int) []catalog.MovieSummary {
	out := make([]catalog.MovieSummary, n)
	for i := range out {
		id := first + i
		out[i] = catalog.MovieSummary{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			VoteAverage: 7.5,
			ReleaseDate: "2021-06-01",
		}
	}
	return out
}

// CatalogCall records one request made to a Catalog.
type CatalogCall struct {
	Method   string
	Query    string
	GenreID  string
	SortBy   catalog.SortOrder
	Category catalog.Category
	Page     int
	MovieID  int
}

// Catalog is a scripted catalog.Catalog. Unset funcs return empty pages.
type Catalog struct {
	SearchFunc   func(ctx context.Context, query string, page int) (*catalog.Page, error)
	DiscoverFunc func(ctx context.Context, genreID string, sortBy catalog.SortOrder, page int) (*catalog.Page, error)
	ListFunc     func(ctx context.Context, category catalog.Category, page int) (*catalog.Page, error)
	GenresFunc   func(ctx context.Context) ([]catalog.Genre, error)
	DetailsFunc  func(ctx context.Context, movieID int) (*catalog.MovieDetails, error)

	mu    sync.Mutex
	calls []CatalogCall
}

func (c *Catalog) record(call CatalogCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns every request made so far.
func (c *Catalog) Calls() []CatalogCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CatalogCall, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Catalog) Search(ctx context.Context, query string, page int) (*catalog.Page, error) {
	c.record(CatalogCall{Method: "Search", Query: query, Page: page})
	if c.SearchFunc != nil {
		return c.SearchFunc(ctx, query, page)
	}
	return &catalog.Page{Page: page}, nil
}

func (c *Catalog) DiscoverByGenre(ctx context.Context, genreID string, sortBy catalog.SortOrder, page int) (*catalog.Page, error) {
	c.record(CatalogCall{Method: "DiscoverByGenre", GenreID: genreID, SortBy: sortBy, Page: page})
	if c.DiscoverFunc != nil {
		return c.DiscoverFunc(ctx, genreID, sortBy, page)
	}
	return &catalog.Page{Page: page, GenreName: catalog.UnknownGenre}, nil
}

func (c *Catalog) List(ctx context.Context, category catalog.Category, page int) (*catalog.Page, error) {
	c.record(CatalogCall{Method: "List", Category: category, Page: page})
	if c.ListFunc != nil {
		return c.ListFunc(ctx, category, page)
	}
	return &catalog.Page{Page: page}, nil
}

func (c *Catalog) Genres(ctx context.Context) ([]catalog.Genre, error) {
	c.record(CatalogCall{Method: "Genres"})
	if c.GenresFunc != nil {
		return c.GenresFunc(ctx)
	}
	return nil, nil
}

func (c *Catalog) Details(ctx context.Context, movieID int) (*catalog.MovieDetails, error) {
	c.record(CatalogCall{Method: "Details", MovieID: movieID})
	if c.DetailsFunc != nil {
		return c.DetailsFunc(ctx, movieID)
	}
	return nil, &catalog.APIError{StatusCode: 404}
}

// PageOf wraps movies in a single-page result.
func PageOf(movies []catalog.MovieSummary) *catalog.Page {
	return &catalog.Page{Results: movies, Page: 1, TotalPages: 1, TotalResults: len(movies)}
}
