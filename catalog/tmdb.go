package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	defaultTimeout  = 8 * time.Second
	genreCacheSize  = 128
	maxCast         = 10
)

// TMDBConfig configures the TMDB client.
type TMDBConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// TMDB implements Catalog against The Movie Database v3 API.
type TMDB struct {
	http       *resty.Client
	genreNames *lru.Cache
	logger     *slog.Logger
}

// NewTMDB creates a Resty-backed TMDB client.
func NewTMDB(cfg TMDBConfig) (*TMDB, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("catalog: TMDB API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New(genreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: genre cache: %w", err)
	}

	return &TMDB{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetHeader("Accept", "application/json").
			SetQueryParam("api_key", cfg.APIKey).
			SetQueryParam("language", cfg.Language).
			SetTimeout(cfg.Timeout),
		genreNames: cache,
		logger:     logger,
	}, nil
}

// listResponse mirrors the paged list envelope. Unknown fields are ignored.
type listResponse struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

type detailsResponse struct {
	MovieDetails
	Credits struct {
		Cast []Cast `json:"cast"`
	} `json:"credits"`
	VideoList struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

type errorResponse struct {
	StatusMessage string `json:"status_message"`
}

// Search finds movies by free text.
func (c *TMDB) Search(ctx context.Context, query string, page int) (*Page, error) {
	page = normalizePage(page)
	return c.fetchPage(ctx, "/search/movie", page, map[string]string{
		"query": query,
	})
}

// DiscoverByGenre lists movies in a genre and resolves the genre name.
func (c *TMDB) DiscoverByGenre(ctx context.Context, genreID string, sortBy SortOrder, page int) (*Page, error) {
	page = normalizePage(page)
	if sortBy == "" {
		sortBy = SortPopularity
	}
	result, err := c.fetchPage(ctx, "/discover/movie", page, map[string]string{
		"with_genres": genreID,
		"sort_by":     string(sortBy),
	})
	if err != nil {
		return nil, err
	}
	result.GenreName = c.genreName(ctx, genreID)
	return result, nil
}

// List returns one of the curated category lists.
func (c *TMDB) List(ctx context.Context, category Category, page int) (*Page, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("catalog: unknown category %q", category)
	}
	return c.fetchPage(ctx, "/movie/"+string(category), normalizePage(page), nil)
}

// Genres lists every movie genre and refreshes the name cache.
func (c *TMDB) Genres(ctx context.Context) ([]Genre, error) {
	var out genreListResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/genre/movie/list")
	if err != nil {
		return nil, fmt.Errorf("catalog: list genres: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.StatusMessage}
	}

	for _, g := range out.Genres {
		c.genreNames.Add(g.ID, g.Name)
	}
	return out.Genres, nil
}

// Details fetches one movie with its top-billed cast and videos.
func (c *TMDB) Details(ctx context.Context, movieID int) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, fmt.Errorf("catalog: invalid movie id %d", movieID)
	}
	var out detailsResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(movieID)).
		SetQueryParam("append_to_response", "credits,videos").
		SetResult(&out).
		SetError(&apiErr).
		Get("/movie/{id}")
	if err != nil {
		return nil, fmt.Errorf("catalog: movie details: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.StatusMessage}
	}

	details := out.MovieDetails
	details.Cast = out.Credits.Cast
	if len(details.Cast) > maxCast {
		details.Cast = details.Cast[:maxCast]
	}
	details.Videos = out.VideoList.Results
	for _, g := range details.Genres {
		c.genreNames.Add(g.ID, g.Name)
	}
	return &details, nil
}

func (c *TMDB) fetchPage(ctx context.Context, path string, page int, params map[string]string) (*Page, error) {
	var out listResponse
	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(&out).
		SetError(&apiErr)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.StatusMessage}
	}

	if out.Page == 0 {
		out.Page = page
	}
	return &Page{
		Results:      out.Results,
		Page:         out.Page,
		TotalPages:   out.TotalPages,
		TotalResults: out.TotalResults,
		HasMore:      out.Page < out.TotalPages,
	}, nil
}

// genreName resolves the first id of a with_genres expression.
func (c *TMDB) genreName(ctx context.Context, genreID string) string {
	first, _, _ := strings.Cut(strings.ReplaceAll(genreID, "|", ","), ",")
	id, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return UnknownGenre
	}
	if name, ok := c.genreNames.Get(id); ok {
		return name.(string)
	}
	if _, err := c.Genres(ctx); err != nil {
		c.logger.Warn("genre lookup failed", "genre_id", id, "error", err)
		return UnknownGenre
	}
	if name, ok := c.genreNames.Get(id); ok {
		return name.(string)
	}
	return UnknownGenre
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
