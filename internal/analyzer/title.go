package analyzer

import (
	"strings"
)

const titlePrefix = "title:"

// FallbackTitle is the title used for a book whose text has no title line.
func FallbackTitle(ebookID string) string {
	if ebookID == "" {
		return ""
	}
	return "Gutenberg Book " + ebookID
}

// ExtractTitle returns the value of the first "Title:" header line in text,
// cut at the first semicolon. When no such line exists, or its value is empty,
// it returns FallbackTitle(fallbackID), which is "" for an empty id.
func ExtractTitle(text, fallbackID string) string {
	text = strings.TrimPrefix(text, "\ufeff")

	for line := range strings.Lines(text) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(trimmed), titlePrefix) {
			continue
		}

		value := trimmed[len(titlePrefix):]
		if i := strings.IndexByte(value, ';'); i >= 0 {
			value = value[:i]
		}
		if title := strings.TrimSpace(value); title != "" {
			return title
		}
		break
	}

	return FallbackTitle(fallbackID)
}
