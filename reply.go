package cinesnap

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

// TurnStatus is the terminal state of a turn.
type TurnStatus string

const (
	StatusFinished TurnStatus = "finished"
	StatusFailed   TurnStatus = "failed"
)

// Reply is what a turn hands back to the UI.
type Reply struct {
	Message       string                 `json:"message"`
	Movies        []catalog.MovieSummary `json:"movies,omitempty"`
	Suggestions   []string               `json:"suggestions,omitempty"`
	NeedsMoreInfo bool                   `json:"needsMoreInfo"`
	Status        TurnStatus             `json:"status"`
	// Fallback is set when the message was assembled from a template
	// because the final model call failed.
	Fallback bool `json:"fallback,omitempty"`
	// Discarded is set when the session was reset while the turn ran; the
	// reply was not recorded in the history.
	Discarded bool `json:"discarded,omitempty"`
}

const apologyMessage = "I'm having trouble processing your request right now. Could you try rephrasing your question?"

var followUpSuggestions = []string{
	"What's your mood like right now?",
	"Any favorite actors or directors?",
	"Something new or a classic?",
	"Are you watching alone or with others?",
	"How much time do you have?",
	"Any genres you want to avoid?",
}

var genericSuggestions = []string{
	"What's popular right now?",
	"I'm feeling adventurous",
	"Something light and funny",
}

var clarifyingPhrases = []string{
	"tell me more",
	"what about",
	"any preference",
	"what genre",
	"mood",
}

// pickSuggestions draws n prompts uniformly without replacement.
func pickSuggestions(rng *rand.Rand, n int) []string {
	if n <= 0 {
		return nil
	}
	n = min(n, len(followUpSuggestions))
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(followUpSuggestions))[:n] {
		out = append(out, followUpSuggestions[i])
	}
	return out
}

// needsMoreInfo reports whether message asks the user something back.
func needsMoreInfo(message string) bool {
	text := strings.ToLower(strings.TrimSpace(message))
	if strings.HasSuffix(text, "?") {
		return true
	}
	for _, phrase := range clarifyingPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// templatedMessage lists the collected movies without narrative framing.
func templatedMessage(movies []catalog.MovieSummary) string {
	if len(movies) == 0 {
		return "I couldn't pull up any movies for that just now. Try asking again in a moment, or tell me what you'd like to watch."
	}

	var b strings.Builder
	b.WriteString("Here are some movies that match what you asked for:\n")
	for i, m := range movies {
		fmt.Fprintf(&b, "\n%d. %s", i+1, m.Title)
		if year := m.Year(); year != "" {
			fmt.Fprintf(&b, " (%s)", year)
		}
		if m.VoteAverage > 0 {
			fmt.Fprintf(&b, " - rated %.1f/10", m.VoteAverage)
		}
	}
	return b.String()
}

// failedReply is returned when the turn cannot proceed at all.
func failedReply() *Reply {
	suggestions := make([]string, len(genericSuggestions))
	copy(suggestions, genericSuggestions)
	return &Reply{
		Message:     apologyMessage,
		Suggestions: suggestions,
		Status:      StatusFailed,
	}
}
