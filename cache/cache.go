// Package cache stores machine suggestions between runs so pending entries
// are not requested from the provider twice. Keys are built by the caller
// from the text hash, the locale pair and the model.
package cache

// SuggestionCache is the interface for suggestion caching.
type SuggestionCache interface {
	// Get retrieves a cached suggestion. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a suggestion in the cache.
	Set(key string, value string) error
}

// Snapshotter is a cache whose live entries can be enumerated for export.
type Snapshotter interface {
	Snapshot() (map[string]string, error)
}
