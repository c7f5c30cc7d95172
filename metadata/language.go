package metadata

import "strings"

// LanguageUnknown is returned when the text is too short to classify or
// the stop-word counts tie.
const LanguageUnknown = "unknown"

// minDetectableLength is the character floor below which detection is not
// attempted.
const minDetectableLength = 50

var (
	italianStopWords = []string{"il", "la", "di", "che", "e", "a", "un", "per", "con", "da"}
	englishStopWords = []string{"the", "and", "of", "to", "a", "in", "for", "is", "on", "that"}
)

// DetectLanguage classifies text as Italian or English by counting which
// fixed stop words appear at word boundaries. Short texts and exact ties
// yield LanguageUnknown.
func DetectLanguage(text string) string {
	if len(text) < minDetectableLength {
		return LanguageUnknown
	}

	lower := strings.ToLower(text)
	italian := countPresent(lower, italianStopWords)
	english := countPresent(lower, englishStopWords)

	switch {
	case italian > english:
		return "it"
	case english > italian:
		return "en"
	default:
		return LanguageUnknown
	}
}

// countPresent counts how many of the words occur at least once, each
// surrounded by spaces.
func countPresent(lower string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(lower, " "+word+" ") {
			count++
		}
	}
	return count
}
