package cinesnap

import (
	"slices"
	"strings"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

// UserContext is the sparse record of known viewer preferences. A nil field
// means unknown; it never means empty or negative.
type UserContext struct {
	Mood            *string                `json:"mood,omitempty"`
	TimeOfDay       *string                `json:"timeOfDay,omitempty"`
	PreferredGenres []string               `json:"preferredGenres,omitempty"`
	WatchDuration   *string                `json:"watchDuration,omitempty"`
	Companions      []string               `json:"companions,omitempty"`
	RecentlyWatched []catalog.MovieSummary `json:"recentlyWatched,omitempty"`
	FavoriteActors  []string               `json:"favoriteActors,omitempty"`
	AvoidGenres     []string               `json:"avoidGenres,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Merge returns c with every key supplied by patch overwritten.
// Slices are replaced wholesale, never concatenated.
func (c UserContext) Merge(patch UserContext) UserContext {
	out := c.Clone()
	if patch.Mood != nil {
		out.Mood = Ptr(*patch.Mood)
	}
	if patch.TimeOfDay != nil {
		out.TimeOfDay = Ptr(*patch.TimeOfDay)
	}
	if patch.PreferredGenres != nil {
		out.PreferredGenres = slices.Clone(patch.PreferredGenres)
	}
	if patch.WatchDuration != nil {
		out.WatchDuration = Ptr(*patch.WatchDuration)
	}
	if patch.Companions != nil {
		out.Companions = slices.Clone(patch.Companions)
	}
	if patch.RecentlyWatched != nil {
		out.RecentlyWatched = slices.Clone(patch.RecentlyWatched)
	}
	if patch.FavoriteActors != nil {
		out.FavoriteActors = slices.Clone(patch.FavoriteActors)
	}
	if patch.AvoidGenres != nil {
		out.AvoidGenres = slices.Clone(patch.AvoidGenres)
	}
	return out
}

// Clone returns a copy that shares no memory with c.
func (c UserContext) Clone() UserContext {
	out := UserContext{
		PreferredGenres: slices.Clone(c.PreferredGenres),
		Companions:      slices.Clone(c.Companions),
		RecentlyWatched: slices.Clone(c.RecentlyWatched),
		FavoriteActors:  slices.Clone(c.FavoriteActors),
		AvoidGenres:     slices.Clone(c.AvoidGenres),
	}
	if c.Mood != nil {
		out.Mood = Ptr(*c.Mood)
	}
	if c.TimeOfDay != nil {
		out.TimeOfDay = Ptr(*c.TimeOfDay)
	}
	if c.WatchDuration != nil {
		out.WatchDuration = Ptr(*c.WatchDuration)
	}
	return out
}

// IsEmpty reports whether nothing is known.
func (c UserContext) IsEmpty() bool {
	return len(c.PromptLines()) == 0
}

// PromptLines renders the known facts as "key: value" lines in a fixed order.
func (c UserContext) PromptLines() []string {
	var lines []string
	addString := func(key string, v *string) {
		if v != nil {
			lines = append(lines, key+": "+*v)
		}
	}
	addList := func(key string, v []string) {
		if len(v) > 0 {
			lines = append(lines, key+": "+strings.Join(v, ", "))
		}
	}

	addString("mood", c.Mood)
	addString("timeOfDay", c.TimeOfDay)
	addList("preferredGenres", c.PreferredGenres)
	addString("watchDuration", c.WatchDuration)
	addList("companions", c.Companions)
	if len(c.RecentlyWatched) > 0 {
		titles := make([]string, 0, len(c.RecentlyWatched))
		for _, m := range c.RecentlyWatched {
			titles = append(titles, m.Title)
		}
		addList("recentlyWatched", titles)
	}
	addList("favoriteActors", c.FavoriteActors)
	addList("avoidGenres", c.AvoidGenres)
	return lines
}
