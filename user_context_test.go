package cinesnap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

func TestUserContext_MergeOverwritesOnlySuppliedKeys(t *testing.T) {
	base := UserContext{
		Mood:            Ptr("happy"),
		TimeOfDay:       Ptr("evening"),
		PreferredGenres: []string{"Comedy", "Drama"},
	}

	merged := base.Merge(UserContext{
		Mood:            Ptr("sad"),
		PreferredGenres: []string{"Horror"},
	})

	if *merged.Mood != "sad" {
		t.Errorf("expected mood sad, got %s", *merged.Mood)
	}
	if *merged.TimeOfDay != "evening" {
		t.Errorf("expected timeOfDay to survive, got %v", merged.TimeOfDay)
	}
	if len(merged.PreferredGenres) != 1 || merged.PreferredGenres[0] != "Horror" {
		t.Errorf("expected genres replaced wholesale, got %v", merged.PreferredGenres)
	}
	if *base.Mood != "happy" {
		t.Error("Merge must not modify the receiver")
	}
}

func TestUserContext_MergeEmptySliceClears(t *testing.T) {
	base := UserContext{AvoidGenres: []string{"Horror"}}
	merged := base.Merge(UserContext{AvoidGenres: []string{}})
	if len(merged.AvoidGenres) != 0 {
		t.Errorf("expected empty avoidGenres, got %v", merged.AvoidGenres)
	}
}

func TestUserContext_PromptLines(t *testing.T) {
	uc := UserContext{
		AvoidGenres:     []string{"Horror"},
		Mood:            Ptr("happy"),
		Companions:      []string{"partner", "kids"},
		RecentlyWatched: []catalog.MovieSummary{{ID: 1, Title: "Up"}, {ID: 2, Title: "Coco"}},
	}

	got := strings.Join(uc.PromptLines(), "\n")
	want := "mood: happy\ncompanions: partner, kids\nrecentlyWatched: Up, Coco\navoidGenres: Horror"
	if got != want {
		t.Errorf("unexpected prompt lines:\n%s\nwant:\n%s", got, want)
	}
}

func TestUserContext_IsEmpty(t *testing.T) {
	if !(UserContext{}).IsEmpty() {
		t.Error("expected zero context to be empty")
	}
	if !(UserContext{PreferredGenres: []string{}}).IsEmpty() {
		t.Error("expected empty slices to count as unknown")
	}
	if (UserContext{WatchDuration: Ptr("90 minutes")}).IsEmpty() {
		t.Error("expected watchDuration to make the context non-empty")
	}
}

func TestUserContext_JSONKeys(t *testing.T) {
	data, err := json.Marshal(UserContext{TimeOfDay: Ptr("night"), FavoriteActors: []string{"Tilda Swinton"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"timeOfDay":"night","favoriteActors":["Tilda Swinton"]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
