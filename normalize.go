package i18nmig

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// NormalizeText decodes character references, collapses whitespace runs to
// a single space and trims the result. The normalized form is the identity
// used for deduplication and map lookup.
func NormalizeText(s string) string {
	if strings.ContainsRune(s, '&') {
		s = html.UnescapeString(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

// IsExtractable reports whether normalized text is worth localizing: it must
// be non-empty and contain at least one letter or digit.
func IsExtractable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
