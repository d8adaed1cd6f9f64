package cinesnap

import (
	"encoding/json"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/providers"
)

// ToolKind is the closed set of catalog tools exposed to the model.
type ToolKind int

const (
	ToolSearchMovies ToolKind = iota + 1
	ToolMoviesByGenre
	ToolPopular
	ToolTopRated
	ToolUpcoming
	ToolNowPlaying
	ToolListGenres
)

// AllToolKinds lists every tool in registry order.
var AllToolKinds = []ToolKind{
	ToolSearchMovies,
	ToolMoviesByGenre,
	ToolPopular,
	ToolTopRated,
	ToolUpcoming,
	ToolNowPlaying,
	ToolListGenres,
}

var toolNames = map[ToolKind]string{
	ToolSearchMovies:  "searchMovies",
	ToolMoviesByGenre: "getMoviesByGenre",
	ToolPopular:       "getPopularMovies",
	ToolTopRated:      "getTopRatedMovies",
	ToolUpcoming:      "getUpcomingMovies",
	ToolNowPlaying:    "getLatestMovies",
	ToolListGenres:    "getGenres",
}

// String returns the name the model calls the tool by.
func (k ToolKind) String() string {
	if name, ok := toolNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// ParseToolKind resolves a model-issued tool name.
func ParseToolKind(name string) (ToolKind, bool) {
	for kind, n := range toolNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// ToolArgs is the typed argument payload of a tool request.
type ToolArgs interface {
	validation.Validatable
	toolArgs()
}

// SearchArgs are the arguments of searchMovies.
type SearchArgs struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// GenreArgs are the arguments of getMoviesByGenre.
type GenreArgs struct {
	GenreID string            `json:"genreId"`
	SortBy  catalog.SortOrder `json:"sortBy"`
	Page    int               `json:"page"`
}

// PageArgs are the arguments of the curated list tools.
type PageArgs struct {
	Page int `json:"page"`
}

// NoArgs is the empty payload of getGenres.
type NoArgs struct{}

func (SearchArgs) toolArgs() {}
func (GenreArgs) toolArgs()  {}
func (PageArgs) toolArgs()   {}
func (NoArgs) toolArgs()     {}

const maxCatalogPage = 500

var pageRules = []validation.Rule{validation.Min(0), validation.Max(maxCatalogPage)}

func (a SearchArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Query, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Page, pageRules...),
	)
}

func (a GenreArgs) Validate() error {
	sortOrders := make([]any, len(catalog.SortOrders))
	for i, s := range catalog.SortOrders {
		sortOrders[i] = s
	}
	return validation.ValidateStruct(&a,
		validation.Field(&a.GenreID, validation.Required, validation.Length(1, 64)),
		validation.Field(&a.SortBy, validation.In(sortOrders...)),
		validation.Field(&a.Page, pageRules...),
	)
}

func (a PageArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Page, pageRules...),
	)
}

func (NoArgs) Validate() error { return nil }

// ToolRequest is a validated tool call with defaults applied.
type ToolRequest struct {
	CallID string
	Kind   ToolKind
	Args   ToolArgs
}

// ParseToolCall resolves and validates a model-issued call. The returned
// error wraps ErrUnknownTool or ErrInvalidArguments.
func ParseToolCall(call providers.ToolCall) (ToolRequest, error) {
	kind, ok := ParseToolKind(call.Name)
	if !ok {
		return ToolRequest{}, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	if call.Arguments == nil {
		return ToolRequest{}, fmt.Errorf("%w: %s: arguments are not a JSON object", ErrInvalidArguments, call.Name)
	}

	args, err := decodeArgs(kind, call.Arguments)
	if err != nil {
		return ToolRequest{}, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, call.Name, err)
	}
	if err := args.Validate(); err != nil {
		return ToolRequest{}, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, call.Name, err)
	}

	return ToolRequest{CallID: call.ID, Kind: kind, Args: withDefaults(args)}, nil
}

func decodeArgs(kind ToolKind, raw map[string]any) (ToolArgs, error) {
	switch kind {
	case ToolSearchMovies:
		var a SearchArgs
		err := remarshal(raw, &a)
		return a, err
	case ToolMoviesByGenre:
		// Models sometimes send numeric genre ids.
		if id, ok := raw["genreId"].(float64); ok {
			raw = cloneArgs(raw)
			raw["genreId"] = strconv.FormatFloat(id, 'f', -1, 64)
		}
		var a GenreArgs
		err := remarshal(raw, &a)
		return a, err
	case ToolPopular, ToolTopRated, ToolUpcoming, ToolNowPlaying:
		var a PageArgs
		err := remarshal(raw, &a)
		return a, err
	case ToolListGenres:
		return NoArgs{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownTool, kind)
}

func remarshal(raw map[string]any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func cloneArgs(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

func withDefaults(args ToolArgs) ToolArgs {
	switch a := args.(type) {
	case SearchArgs:
		a.Page = defaultPage(a.Page)
		return a
	case GenreArgs:
		a.Page = defaultPage(a.Page)
		if a.SortBy == "" {
			a.SortBy = catalog.SortPopularity
		}
		return a
	case PageArgs:
		a.Page = defaultPage(a.Page)
		return a
	}
	return args
}

func defaultPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

var toolDefinitions = buildToolDefinitions()

// ToolDefinitions returns the registry as exposed to the model.
func ToolDefinitions() []providers.ToolDefinition {
	out := make([]providers.ToolDefinition, len(toolDefinitions))
	copy(out, toolDefinitions)
	return out
}

func buildToolDefinitions() []providers.ToolDefinition {
	sortOrders := make([]string, len(catalog.SortOrders))
	for i, s := range catalog.SortOrders {
		sortOrders[i] = string(s)
	}
	page := func() *ParameterSchema {
		return Integer().WithDescription("Page number, starting at 1")
	}

	defs := make([]providers.ToolDefinition, 0, len(AllToolKinds))
	for _, kind := range AllToolKinds {
		tb := NewTool(kind.String())
		switch kind {
		case ToolSearchMovies:
			tb.WithDescription("Search for movies by title, actor, or keyword").
				WithParameter("query", String().Required().WithDescription("Free-text search query")).
				WithParameter("page", page())
		case ToolMoviesByGenre:
			tb.WithDescription("List movies in a genre. Use getGenres to look up genre ids.").
				WithParameter("genreId", String().Required().WithDescription("Genre id, e.g. \"27\" for Horror")).
				WithParameter("sortBy", String().WithDescription("Sort order").WithEnum(sortOrders...)).
				WithParameter("page", page())
		case ToolPopular:
			tb.WithDescription("List movies that are popular right now").WithParameter("page", page())
		case ToolTopRated:
			tb.WithDescription("List the highest rated movies of all time").WithParameter("page", page())
		case ToolUpcoming:
			tb.WithDescription("List upcoming releases").WithParameter("page", page())
		case ToolNowPlaying:
			tb.WithDescription("List the latest releases currently in theaters").WithParameter("page", page())
		case ToolListGenres:
			tb.WithDescription("List every movie genre with its id")
		}
		defs = append(defs, tb.Build())
	}
	return defs
}
