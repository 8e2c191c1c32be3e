package i18nmig

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ZaguanLabs/i18nmig/store"
)

// Artifacts locates the files passes use to hand data to each other.
type Artifacts struct {
	Report      string // Extraction report (JSON)
	Map         string // Translation map (JSON)
	Bundles     string // Directory of <locale>.json bundles
	Review      string // Pending-translation review file (YAML)
	Suggestions string // Directory of <locale>.json machine suggestions
}

// DefaultArtifacts returns the artifact layout under dir.
func DefaultArtifacts(dir string) Artifacts {
	return Artifacts{
		Report:      filepath.Join(dir, "i18n", "extracted.json"),
		Map:         filepath.Join(dir, "i18n", "keys.json"),
		Bundles:     filepath.Join(dir, "i18n", "locales"),
		Review:      filepath.Join(dir, "i18n", "review.yaml"),
		Suggestions: filepath.Join(dir, "i18n", "suggestions"),
	}
}

// BundlePath returns the bundle file for locale.
func (a Artifacts) BundlePath(locale string) string {
	return store.BundlePath(a.Bundles, locale)
}

// SuggestionsPath returns the suggestions file for locale.
func (a Artifacts) SuggestionsPath(locale string) string {
	return store.BundlePath(a.Suggestions, locale)
}

func missing(err error, artifact, path, hint string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &MissingArtifactError{Artifact: artifact, Path: path, Hint: hint, Cause: err}
	}
	return fmt.Errorf("loading %s: %w", artifact, err)
}

// LoadReport reads the extraction report.
func LoadReport(path string) (Report, error) {
	records, err := store.ReadReport(path)
	if err != nil {
		return nil, missing(err, "extraction report", path, "i18nmig extract")
	}

	report := make(Report, len(records))
	for file, recs := range records {
		lits := make([]ExtractedLiteral, 0, len(recs))
		for _, rec := range recs {
			lit := ExtractedLiteral{Text: rec.Text, File: file, Attrs: rec.Attrs}
			if rec.Attr != nil {
				lit.Attr = *rec.Attr
			}
			lits = append(lits, lit)
		}
		report[file] = lits
	}
	return report, nil
}

// SaveReport writes the extraction report.
func SaveReport(path string, report Report) error {
	records := make(store.Report, len(report))
	for file, lits := range report {
		recs := make([]store.LiteralRecord, 0, len(lits))
		for _, lit := range lits {
			rec := store.LiteralRecord{Text: lit.Text, Attrs: lit.Attrs}
			if lit.Attr != "" {
				attr := lit.Attr
				rec.Attr = &attr
			}
			recs = append(recs, rec)
		}
		records[file] = recs
	}
	if err := store.WriteReport(path, records); err != nil {
		return fmt.Errorf("saving extraction report: %w", err)
	}
	return nil
}

// LoadMap reads the translation map.
func LoadMap(path string) (TranslationMap, error) {
	m, err := store.ReadMap(path)
	if err != nil {
		return nil, missing(err, "translation map", path, "i18nmig keys")
	}
	return TranslationMap(m), nil
}

// LoadBundle reads one locale bundle.
func LoadBundle(path string) (ResourceBundle, error) {
	b, err := store.ReadBundle(path)
	if err != nil {
		return nil, missing(err, "resource bundle", path, "i18nmig keys")
	}
	return ResourceBundle(b), nil
}

// LoadPrevious reads the map and secondary bundle of an earlier run. Both
// are optional: a missing file yields a nil value and no error.
func LoadPrevious(a Artifacts, secondaryLocale string) (TranslationMap, ResourceBundle, error) {
	var target *MissingArtifactError

	m, err := LoadMap(a.Map)
	if err != nil && !errors.As(err, &target) {
		return nil, nil, err
	}
	b, err := LoadBundle(a.BundlePath(secondaryLocale))
	if err != nil && !errors.As(err, &target) {
		return nil, nil, err
	}
	return m, b, nil
}

// SaveGeneration writes the map, both bundles and the review file.
func SaveGeneration(a Artifacts, gen *Generation) error {
	if err := store.WriteMap(a.Map, gen.Map); err != nil {
		return fmt.Errorf("saving translation map: %w", err)
	}
	for locale, bundle := range gen.Bundles {
		if err := store.WriteBundle(a.BundlePath(locale), bundle); err != nil {
			return fmt.Errorf("saving %s bundle: %w", locale, err)
		}
	}
	review := store.NewReview(gen.PrimaryLocale, map[string][]string{gen.SecondaryLocale: gen.Pending})
	if err := store.WriteReview(a.Review, review); err != nil {
		return fmt.Errorf("saving review file: %w", err)
	}
	return nil
}

// PendingItems lists the secondary keys the review file still marks as
// pending, paired with their primary text. Texts seen only as attribute
// values in the extraction report carry the attribute name as a hint; the
// report is optional.
func PendingItems(a Artifacts, secondaryLocale string) ([]SuggestItem, error) {
	review, err := store.ReadReview(a.Review)
	if err != nil {
		return nil, missing(err, "review file", a.Review, "i18nmig keys")
	}

	primary, err := LoadBundle(a.BundlePath(review.Primary))
	if err != nil {
		return nil, err
	}

	var target *MissingArtifactError
	report, err := LoadReport(a.Report)
	if err != nil && !errors.As(err, &target) {
		return nil, err
	}
	hints := attributeHints(report)

	keys := review.Pending[secondaryLocale]
	items := make([]SuggestItem, 0, len(keys))
	for _, key := range keys {
		text, ok := primary[key]
		if !ok {
			continue
		}
		items = append(items, SuggestItem{Key: key, Text: text, Hint: hints[text]})
	}
	return items, nil
}

func attributeHints(report Report) map[string]string {
	hints := make(map[string]string)
	asText := make(map[string]bool)
	for _, path := range report.Paths() {
		for _, lit := range report[path] {
			if !lit.IsAttribute() {
				asText[lit.Text] = true
				continue
			}
			if _, ok := hints[lit.Text]; !ok {
				hints[lit.Text] = lit.Attr
			}
		}
	}
	for text := range asText {
		delete(hints, text)
	}
	return hints
}

// SaveSuggestions merges suggestions into the locale's suggestions file.
// Entries already in the file are replaced only when suggested again.
func SaveSuggestions(a Artifacts, locale string, suggestions map[string]string) error {
	path := a.SuggestionsPath(locale)

	merged, err := store.ReadSuggestions(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		merged = make(map[string]string, len(suggestions))
	case err != nil:
		return fmt.Errorf("reading suggestions: %w", err)
	}
	for key, value := range suggestions {
		merged[key] = value
	}

	if err := store.WriteSuggestions(path, merged); err != nil {
		return fmt.Errorf("saving suggestions: %w", err)
	}
	return nil
}
