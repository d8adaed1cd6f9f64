package cinesnap

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

func TestPickSuggestions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		got := pickSuggestions(rng, 3)
		if len(got) != 3 {
			t.Fatalf("expected 3 suggestions, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, s := range got {
			if !slices.Contains(followUpSuggestions, s) {
				t.Errorf("unexpected suggestion %q", s)
			}
			if seen[s] {
				t.Errorf("duplicate suggestion %q", s)
			}
			seen[s] = true
		}
	}

	if got := pickSuggestions(rng, 0); got != nil {
		t.Errorf("expected no suggestions, got %v", got)
	}
	if got := pickSuggestions(rng, 99); len(got) != len(followUpSuggestions) {
		t.Errorf("expected the whole pool, got %d", len(got))
	}
}

func TestNeedsMoreInfo(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"What kind of movies do you enjoy?", true},
		{"Tell me more about your evening.", true},
		{"Any preference between old and new.", true},
		{"What about something animated.", true},
		{"Here are three great comedies for tonight.", false},
		{"Enjoy the show!", false},
	}
	for _, tt := range tests {
		if got := needsMoreInfo(tt.message); got != tt.want {
			t.Errorf("needsMoreInfo(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestTemplatedMessage(t *testing.T) {
	msg := templatedMessage([]catalog.MovieSummary{
		{Title: "Alien", ReleaseDate: "1979-05-25", VoteAverage: 8.1},
		{Title: "Untitled"},
	})

	if !strings.Contains(msg, "1. Alien (1979) - rated 8.1/10") {
		t.Errorf("expected first movie line, got:\n%s", msg)
	}
	if !strings.Contains(msg, "2. Untitled") || strings.Contains(msg, "Untitled (") {
		t.Errorf("expected bare second movie line, got:\n%s", msg)
	}
	if needsMoreInfo(templatedMessage(nil)) {
		t.Error("the empty templated message must not read as a question")
	}
}

func TestFailedReply(t *testing.T) {
	r := failedReply()
	if r.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", r.Status)
	}
	if r.Message != apologyMessage {
		t.Errorf("unexpected message %q", r.Message)
	}
	if !slices.Equal(r.Suggestions, genericSuggestions) {
		t.Errorf("expected generic suggestions, got %v", r.Suggestions)
	}
	r.Suggestions[0] = "changed"
	if genericSuggestions[0] == "changed" {
		t.Error("failedReply must copy the generic suggestions")
	}
}
