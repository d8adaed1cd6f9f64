package cinesnap

import (
	"strings"
	"unicode"
)

type moodKeywords struct {
	mood     string
	keywords []string
}

// moodTable is ordered; ties go to the earlier mood.
var moodTable = []moodKeywords{
	{"happy", []string{"happy", "joyful", "excited", "cheerful", "upbeat"}},
	{"sad", []string{"sad", "melancholy", "down", "blue", "emotional"}},
	{"stressed", []string{"stressed", "anxious", "tense", "worried", "overwhelmed"}},
	{"bored", []string{"bored", "restless", "uninterested", "monotonous"}},
	{"romantic", []string{"romantic", "love", "date", "intimate", "affectionate"}},
	{"adventurous", []string{"adventurous", "exciting", "thrilling", "energetic"}},
}

// inferMood returns the mood whose keywords occur most often in text.
func inferMood(text string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return "", false
	}
	seen := make(map[string]int, len(words))
	for _, w := range words {
		seen[w]++
	}

	best, bestScore := "", 0
	for _, entry := range moodTable {
		score := 0
		for _, kw := range entry.keywords {
			score += seen[kw]
		}
		if score > bestScore {
			best, bestScore = entry.mood, score
		}
	}
	return best, bestScore > 0
}
