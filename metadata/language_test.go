package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	english := "The quick brown fox jumped over the fence and ran off in search of food that morning."
	italian := "Il gatto dorme sulla sedia di legno che sta vicino a un tavolo per tutta la giornata con calma."

	assert.Equal(t, "en", DetectLanguage(english))
	assert.Equal(t, "it", DetectLanguage(italian))
}

func TestDetectLanguageShortText(t *testing.T) {
	assert.Equal(t, LanguageUnknown, DetectLanguage("the cat and the dog"))
	assert.Equal(t, LanguageUnknown, DetectLanguage(""))
}

func TestDetectLanguageNoSignal(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 3)
	assert.Equal(t, LanguageUnknown, DetectLanguage(text))
}
