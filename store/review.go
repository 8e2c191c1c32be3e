package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ReviewVersion is the current review file format.
const ReviewVersion = 1

// Review lists secondary-locale keys that still hold the primary text and
// need a human translation.
type Review struct {
	Version     int                 `yaml:"version"`
	GeneratedAt string              `yaml:"generated_at,omitempty"`
	Primary     string              `yaml:"primary"`
	Pending     map[string][]string `yaml:"pending"`
}

// NewReview creates a review for the given primary locale and pending keys
// per secondary locale. Keys are sorted.
func NewReview(primary string, pending map[string][]string) *Review {
	r := &Review{
		Version:     ReviewVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Primary:     primary,
		Pending:     make(map[string][]string, len(pending)),
	}
	for locale, keys := range pending {
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		r.Pending[locale] = sorted
	}
	return r
}

// Count returns the number of pending keys across locales.
func (r *Review) Count() int {
	n := 0
	for _, keys := range r.Pending {
		n += len(keys)
	}
	return n
}

// ReadReview loads the review file.
func ReadReview(path string) (*Review, error) {
	data, err := os.ReadFile(path) // #nosec G304 - artifact paths come from configuration
	if err != nil {
		return nil, err
	}

	var r Review
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if r.Version == 0 {
		r.Version = ReviewVersion
	}
	if r.Version > ReviewVersion {
		return nil, fmt.Errorf("%s: unsupported review version %d", path, r.Version)
	}
	if r.Pending == nil {
		r.Pending = make(map[string][]string)
	}
	return &r, nil
}

// WriteReview persists the review file.
func WriteReview(path string, r *Review) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	header := []byte("# Generated by i18nmig. Secondary-locale keys below still hold the\n# primary text; translate them in the bundle, then re-run \"keys\".\n")
	return WriteFileAtomic(path, append(header, data...), 0o644)
}
