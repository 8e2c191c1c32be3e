package i18nmig

import (
	"context"

	"github.com/rs/zerolog"
)

// AIProvider produces machine suggestions for secondary-locale entries.
// Suggestions go to a review artifact, never straight into a bundle.
type AIProvider interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]string, error)
}

// SuggestRequest contains the parameters for a suggestion request.
type SuggestRequest struct {
	Texts        []string          // Primary-locale texts
	Hints        []string          // Per-text UI hints, e.g. "tooltip", parallel to Texts
	SourceLocale string
	TargetLocale string
	Context      string            // Global description of the application
	Glossary     map[string]string // Curated translations to stay consistent with
}

// SuggestionCache stores suggestions across runs.
type SuggestionCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// SuggestItem is one pending secondary entry.
type SuggestItem struct {
	Key  string
	Text string
	Hint string
}

// SuggestResult is the outcome of a Suggest call.
type SuggestResult struct {
	Suggestions map[string]string // Lookup key → suggested secondary text
	Cached      int
	Requested   int
}

// Suggester requests suggestions for pending entries, consulting a cache
// first and batching the misses.
type Suggester struct {
	provider     AIProvider
	cache        SuggestionCache
	sourceLocale string
	targetLocale string
	model        string
	context      string
	glossary     map[string]string
	batchSize    int
	logger       zerolog.Logger
}

// SuggesterOption is a functional option for configuring the Suggester.
type SuggesterOption func(*Suggester)

// WithSuggestionCache sets the suggestion cache.
func WithSuggestionCache(cache SuggestionCache) SuggesterOption {
	return func(s *Suggester) {
		s.cache = cache
	}
}

// WithSuggestLocales sets the source and target locales.
func WithSuggestLocales(source, target string) SuggesterOption {
	return func(s *Suggester) {
		s.sourceLocale = source
		s.targetLocale = target
	}
}

// WithModel records the model name; it is part of the cache key.
func WithModel(model string) SuggesterOption {
	return func(s *Suggester) {
		s.model = model
	}
}

// WithContext sets the global application description.
func WithContext(ctx string) SuggesterOption {
	return func(s *Suggester) {
		s.context = ctx
	}
}

// WithGlossary sets curated translations the provider should follow.
func WithGlossary(glossary map[string]string) SuggesterOption {
	return func(s *Suggester) {
		s.glossary = glossary
	}
}

// WithBatchSize caps the number of texts sent per provider call.
func WithBatchSize(n int) SuggesterOption {
	return func(s *Suggester) {
		s.batchSize = n
	}
}

// WithSuggestLogger sets the logger.
func WithSuggestLogger(l zerolog.Logger) SuggesterOption {
	return func(s *Suggester) {
		s.logger = l
	}
}

// NewSuggester creates a Suggester for the default es → en direction.
func NewSuggester(provider AIProvider, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		provider:     provider,
		sourceLocale: DefaultPrimaryLocale,
		targetLocale: DefaultSecondaryLocale,
		context:      "User interface strings of a web administration front end.",
		batchSize:    50,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.batchSize < 1 {
		s.batchSize = 1
	}
	return s
}

// Suggest returns suggestions for items, serving cache hits first. Items
// sharing a text are requested once.
func (s *Suggester) Suggest(ctx context.Context, items []SuggestItem) (*SuggestResult, error) {
	result := &SuggestResult{Suggestions: make(map[string]string, len(items))}

	var misses []SuggestItem
	keysByText := make(map[string][]string)
	for _, item := range items {
		if s.cache != nil {
			if cached, ok := s.cache.Get(s.cacheKey(item.Text)); ok {
				result.Suggestions[item.Key] = cached
				result.Cached++
				continue
			}
		}
		if _, seen := keysByText[item.Text]; !seen {
			misses = append(misses, item)
		}
		keysByText[item.Text] = append(keysByText[item.Text], item.Key)
	}

	if len(misses) == 0 || s.provider == nil {
		return result, nil
	}

	for start := 0; start < len(misses); start += s.batchSize {
		end := min(start+s.batchSize, len(misses))
		batch := misses[start:end]

		req := SuggestRequest{
			Texts:        make([]string, len(batch)),
			Hints:        make([]string, len(batch)),
			SourceLocale: s.sourceLocale,
			TargetLocale: s.targetLocale,
			Context:      s.context,
			Glossary:     s.glossary,
		}
		for i, item := range batch {
			req.Texts[i] = item.Text
			req.Hints[i] = item.Hint
		}

		suggestions, err := s.provider.Suggest(ctx, req)
		if err != nil {
			return result, err
		}
		if len(suggestions) != len(batch) {
			return result, &CountMismatchError{Expected: len(batch), Got: len(suggestions)}
		}

		for i, item := range batch {
			for _, key := range keysByText[item.Text] {
				result.Suggestions[key] = suggestions[i]
			}
			if s.cache != nil {
				if err := s.cache.Set(s.cacheKey(item.Text), suggestions[i]); err != nil {
					s.logger.Warn().Err(err).Msg("cache set failed")
				}
			}
			result.Requested++
		}
		s.logger.Debug().Int("batch", len(batch)).Msg("suggestions received")
	}

	return result, nil
}

func (s *Suggester) cacheKey(text string) string {
	return SuggestionCacheKey(HashText(text), s.sourceLocale, s.targetLocale, s.model)
}
