package i18nmig

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// DefaultPrimaryLocale is the locale the UI sources are authored in.
	DefaultPrimaryLocale = "es"

	// DefaultSecondaryLocale is the single translation target.
	DefaultSecondaryLocale = "en"
)

// CanonicalLocale parses a locale tag and returns its canonical BCP 47 form
// (e.g. "es_mx" → "es-MX").
func CanonicalLocale(locale string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return tag.String(), nil
}

// SameLanguage reports whether two locale tags share a base language.
func SameLanguage(a, b string) bool {
	ta, errA := language.Parse(strings.ReplaceAll(a, "_", "-"))
	tb, errB := language.Parse(strings.ReplaceAll(b, "_", "-"))
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}

// GetLanguageName returns the English name of a locale for provider prompts.
// Falls back to the code itself if it cannot be parsed or named.
func GetLanguageName(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return locale
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return locale
}
