package i18nmig

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxKeyLength is the default cap on a base slug, before suffixing.
	MaxKeyLength = 60

	// NoKeyLengthLimit disables the slug cap where zero selects the default.
	NoKeyLengthLimit = -1

	// PlaceholderKey is used when a text has no slug-able characters.
	PlaceholderKey = "key"
)

var lower = cases.Lower(language.Und)

// Slugify derives a base lookup key from normalized text. Accents are folded,
// the result is lower-cased, characters outside [a-z0-9_-] and whitespace are
// dropped, whitespace runs become "_" and the slug is capped at maxLen bytes.
// A non-positive maxLen disables the cap.
func Slugify(text string, maxLen int) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, text)
	if err != nil {
		folded = text
	}
	folded = lower.String(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "_")
	if maxLen > 0 && len(slug) > maxLen {
		slug = slug[:maxLen]
	}
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return PlaceholderKey
	}
	return slug
}
