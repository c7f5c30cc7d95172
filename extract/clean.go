package extract

import (
	"regexp"
	"strings"
)

var (
	// C0/C1 control characters except tab, newline and carriage return.
	controlChars = regexp.MustCompile("[\\x00-\\x08\\x0B\\x0C\\x0E-\\x1F\\x7F-\\x9F]")
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
)

// CleanText normalizes extracted text: control characters are stripped,
// runs of spaces and tabs collapse to one space, runs of blank lines
// collapse to one blank line, and the result is trimmed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = controlChars.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
