package i18nmig

import "sort"

// DiffResult represents the difference between a previous translation map
// and the texts seen in the current extraction.
type DiffResult struct {
	// Added contains texts that had no key in the previous map.
	Added []string

	// Retained contains texts that were seen again and keep their key.
	Retained []string

	// Unseen contains previously mapped texts absent from this extraction.
	// They are kept in the map: rewritten sources no longer carry them as
	// literals, so absence is not evidence of removal.
	Unseen []string
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added    int
	Retained int
	Unseen   int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:    len(d.Added),
		Retained: len(d.Retained),
		Unseen:   len(d.Unseen),
	}
}

// HasChanges returns true if any text needs a new key.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0
}

// DiffTexts compares distinct texts against a previous map. All result
// slices are sorted.
func DiffTexts(previous TranslationMap, texts []string) *DiffResult {
	result := &DiffResult{}
	seen := make(map[string]bool, len(texts))

	for _, text := range texts {
		if seen[text] {
			continue
		}
		seen[text] = true
		if previous.Has(text) {
			result.Retained = append(result.Retained, text)
		} else {
			result.Added = append(result.Added, text)
		}
	}

	for text := range previous {
		if !seen[text] {
			result.Unseen = append(result.Unseen, text)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Retained)
	sort.Strings(result.Unseen)
	return result
}
