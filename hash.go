package i18nmig

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of the normalized text, so texts that
// differ only in whitespace share one hash.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(hash[:])
}

// SuggestionCacheKey identifies a cached suggestion by text hash, locale pair
// and model. Changing any of them invalidates earlier suggestions.
func SuggestionCacheKey(hash, sourceLocale, targetLocale, model string) string {
	return hash + ":" + sourceLocale + ":" + targetLocale + ":" + model
}
