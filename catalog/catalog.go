// Package catalog defines the read-only movie catalog the assistant queries
// and a TMDB-backed implementation of it.
package catalog

import (
	"context"
	"fmt"
)

// Catalog is the movie metadata service as seen by the assistant.
type Catalog interface {
	Search(ctx context.Context, query string, page int) (*Page, error)
	DiscoverByGenre(ctx context.Context, genreID string, sortBy SortOrder, page int) (*Page, error)
	List(ctx context.Context, category Category, page int) (*Page, error)
	Genres(ctx context.Context) ([]Genre, error)
	Details(ctx context.Context, movieID int) (*MovieDetails, error)
}

// MovieSummary is the minimal projection of a catalog item used for display
// and recommendation. Values are passed through verbatim from the catalog.
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date,omitempty"`
}

// Year returns the release year, or "" when the date is unknown.
func (m MovieSummary) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// MovieDetails is the full record of one movie with its cast and trailers.
type MovieDetails struct {
	MovieSummary
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	VoteCount        int     `json:"vote_count"`
	Runtime          int     `json:"runtime,omitempty"`
	Tagline          string  `json:"tagline,omitempty"`
	Status           string  `json:"status,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	Cast             []Cast  `json:"cast,omitempty"`
	Videos           []Video `json:"videos,omitempty"`
}

// Cast is one credited actor.
type Cast struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// Video is a trailer or clip hosted on an external site.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Page is one page of catalog results.
type Page struct {
	Results      []MovieSummary `json:"results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	HasMore      bool           `json:"has_more"`
	GenreName    string         `json:"genre_name,omitempty"`
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Category is a curated movie list.
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryUpcoming   Category = "upcoming"
	CategoryNowPlaying Category = "now_playing"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPopular, CategoryTopRated, CategoryUpcoming, CategoryNowPlaying:
		return true
	}
	return false
}

// SortOrder orders genre discovery results.
type SortOrder string

const (
	SortPopularity  SortOrder = "popularity.desc"
	SortVoteAverage SortOrder = "vote_average.desc"
	SortReleaseDate SortOrder = "release_date.desc"
	SortRevenue     SortOrder = "revenue.desc"
)

// SortOrders lists every accepted sort order, default first.
var SortOrders = []SortOrder{SortPopularity, SortVoteAverage, SortReleaseDate, SortRevenue}

// UnknownGenre is reported when a genre id cannot be resolved to a name.
const UnknownGenre = "Unknown Genre"

// APIError is returned for non-2xx catalog responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog: status %d: %s", e.StatusCode, e.Message)
}
