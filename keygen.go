package i18nmig

import (
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// maxSuffix bounds the collision search for a single base slug.
const maxSuffix = 100000

// KeyGenerator assigns stable lookup keys to distinct literal texts and seeds
// the resource bundles for both locales.
type KeyGenerator struct {
	maxKeyLength      int
	primaryLocale     string
	secondaryLocale   string
	previous          TranslationMap
	previousSecondary ResourceBundle
	dictionary        map[string]string
	logger            zerolog.Logger
}

// KeyGeneratorOption is a functional option for configuring the KeyGenerator.
type KeyGeneratorOption func(*KeyGenerator)

// WithMaxKeyLength sets the cap on base slugs. A non-positive n disables it.
func WithMaxKeyLength(n int) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.maxKeyLength = n
	}
}

// WithLocales sets the primary and secondary locale tags.
func WithLocales(primary, secondary string) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.primaryLocale = primary
		g.secondaryLocale = secondary
	}
}

// WithPrevious seeds the generator with an earlier map. Every entry is kept
// with its key, and those keys are reserved for collision resolution.
func WithPrevious(m TranslationMap) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.previous = m
	}
}

// WithPreviousSecondary provides the existing secondary bundle so curated
// translations survive regeneration.
func WithPreviousSecondary(b ResourceBundle) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.previousSecondary = b
	}
}

// WithDictionary provides curated secondary-locale translations keyed by
// primary text.
func WithDictionary(d map[string]string) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.dictionary = d
	}
}

// WithKeyLogger sets the logger.
func WithKeyLogger(l zerolog.Logger) KeyGeneratorOption {
	return func(g *KeyGenerator) {
		g.logger = l
	}
}

// NewKeyGenerator creates a KeyGenerator with the default key length and the
// es/en locale pair.
func NewKeyGenerator(opts ...KeyGeneratorOption) *KeyGenerator {
	g := &KeyGenerator{
		maxKeyLength:    MaxKeyLength,
		primaryLocale:   DefaultPrimaryLocale,
		secondaryLocale: DefaultSecondaryLocale,
		logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generation is the outcome of one key generation run.
type Generation struct {
	Map             TranslationMap
	PrimaryLocale   string
	SecondaryLocale string
	Bundles         map[string]ResourceBundle // Keyed by locale
	Pending         []string                  // Secondary keys still holding the primary text, sorted
	Diff            *DiffResult
	Failures        []error // One *KeyExhaustedError per skipped text
}

// Primary returns the primary-locale bundle.
func (g *Generation) Primary() ResourceBundle {
	return g.Bundles[g.PrimaryLocale]
}

// Secondary returns the secondary-locale bundle.
func (g *Generation) Secondary() ResourceBundle {
	return g.Bundles[g.SecondaryLocale]
}

// DistinctTexts flattens a report into its distinct normalized texts, sorted.
func DistinctTexts(report Report) []string {
	var texts []string
	for _, lits := range report {
		for _, lit := range lits {
			texts = append(texts, lit.Text)
		}
	}
	return distinctSorted(texts)
}

func distinctSorted(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		text = NormalizeText(text)
		if !IsExtractable(text) || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

// Generate assigns keys to texts. Texts are normalized and deduplicated
// first; new texts are processed in lexicographic order so collision
// suffixes are deterministic. Texts already in the previous map keep their
// key.
func (g *KeyGenerator) Generate(texts []string) *Generation {
	distinct := distinctSorted(texts)

	m := make(TranslationMap, len(g.previous)+len(distinct))
	used := make(map[string]bool, len(g.previous)+len(distinct))
	for text, key := range g.previous {
		m[text] = key
		used[key] = true
	}

	gen := &Generation{
		Map:             m,
		PrimaryLocale:   g.primaryLocale,
		SecondaryLocale: g.secondaryLocale,
		Diff:            DiffTexts(g.previous, distinct),
	}

	for _, text := range gen.Diff.Added {
		base := Slugify(text, g.maxKeyLength)
		key, err := resolveKey(text, base, used)
		if err != nil {
			g.logger.Warn().Str("text", text).Err(err).Msg("skipping text")
			gen.Failures = append(gen.Failures, err)
			continue
		}
		used[key] = true
		m[text] = key
	}

	gen.Bundles, gen.Pending = g.seedBundles(m)

	g.logger.Debug().
		Int("added", len(gen.Diff.Added)).
		Int("retained", len(gen.Diff.Retained)).
		Int("unseen", len(gen.Diff.Unseen)).
		Int("pending", len(gen.Pending)).
		Msg("keys generated")

	return gen
}

// resolveKey returns base if free, otherwise the first free base_N.
func resolveKey(text, base string, used map[string]bool) (string, error) {
	if !used[base] {
		return base, nil
	}
	for n := 1; n <= maxSuffix; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", &KeyExhaustedError{Text: text, Base: base, Tried: maxSuffix}
}

// seedBundles builds both bundles from the map. Secondary values come from,
// in order: the previous secondary bundle when it differs from the primary
// text, the dictionary, or the primary text itself, which marks the key
// pending.
func (g *KeyGenerator) seedBundles(m TranslationMap) (map[string]ResourceBundle, []string) {
	primary := make(ResourceBundle, len(m))
	secondary := make(ResourceBundle, len(m))
	var pending []string

	for text, key := range m {
		primary[key] = text

		if v, ok := g.previousSecondary[key]; ok && v != "" && v != text {
			secondary[key] = v
			continue
		}
		if v, ok := g.dictionary[text]; ok && v != "" {
			secondary[key] = v
			continue
		}
		secondary[key] = text
		pending = append(pending, key)
	}

	sort.Strings(pending)
	return map[string]ResourceBundle{
		g.primaryLocale:   primary,
		g.secondaryLocale: secondary,
	}, pending
}
