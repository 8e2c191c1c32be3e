package i18nmig

import (
	"errors"
	"sort"
)

// StatusReport summarizes the artifacts of a project.
type StatusReport struct {
	HasReport bool
	HasMap    bool

	Files         int      // Files in the extraction report
	Literals      int      // Literal entries across files
	DistinctTexts int      // Distinct texts in the report
	Unmapped      []string // Report texts without a key, sorted
	MapEntries    int
	Unseen        []string       // Mapped texts absent from the report, sorted
	BundleSizes   map[string]int // Keyed by locale
	Pending       []string       // Secondary keys still holding the primary text, sorted
}

// Status inspects the artifacts without modifying anything. Missing
// artifacts are reported through the Has* flags rather than as errors.
func Status(a Artifacts, primaryLocale, secondaryLocale string) (*StatusReport, error) {
	st := &StatusReport{BundleSizes: make(map[string]int)}
	var notFound *MissingArtifactError

	report, err := LoadReport(a.Report)
	switch {
	case err == nil:
		st.HasReport = true
	case !errors.As(err, &notFound):
		return nil, err
	}

	keys, err := LoadMap(a.Map)
	switch {
	case err == nil:
		st.HasMap = true
	case !errors.As(err, &notFound):
		return nil, err
	}

	texts := DistinctTexts(report)
	st.Files = len(report)
	st.Literals = report.Count()
	st.DistinctTexts = len(texts)
	st.MapEntries = len(keys)

	diff := DiffTexts(keys, texts)
	if st.HasMap {
		st.Unmapped = diff.Added
	}
	if st.HasReport {
		st.Unseen = diff.Unseen
	}

	bundles := make(map[string]ResourceBundle, 2)
	for _, locale := range []string{primaryLocale, secondaryLocale} {
		b, err := LoadBundle(a.BundlePath(locale))
		if err != nil {
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		bundles[locale] = b
		st.BundleSizes[locale] = len(b)
	}

	primary, secondary := bundles[primaryLocale], bundles[secondaryLocale]
	for key, value := range secondary {
		if text, ok := primary[key]; ok && text == value {
			st.Pending = append(st.Pending, key)
		}
	}
	sort.Strings(st.Pending)

	return st, nil
}
