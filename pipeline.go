package i18nmig

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Root            string
	Include         []string
	Exclude         []string
	Artifacts       Artifacts
	PrimaryLocale   string
	SecondaryLocale string
	MaxKeyLength    int               // 0 selects MaxKeyLength, negative disables the cap
	Dictionary      map[string]string // Curated secondary translations keyed by primary text
	Options         []Option          // Processors, workers and write safety for the file passes
	Logger          zerolog.Logger
}

// Pipeline runs the passes against one project. When several passes run on
// the same Pipeline, later passes use the report and map held in memory
// instead of reloading them; every artifact is still written to disk for
// review.
type Pipeline struct {
	cfg    PipelineConfig
	report Report
	keys   TranslationMap
}

// NewPipeline creates a Pipeline. Empty fields fall back to defaults.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Artifacts == (Artifacts{}) {
		cfg.Artifacts = DefaultArtifacts(cfg.Root)
	}
	if cfg.PrimaryLocale == "" {
		cfg.PrimaryLocale = DefaultPrimaryLocale
	}
	if cfg.SecondaryLocale == "" {
		cfg.SecondaryLocale = DefaultSecondaryLocale
	}
	if cfg.MaxKeyLength == 0 {
		cfg.MaxKeyLength = MaxKeyLength
	}
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = DefaultExclude
	}
	return &Pipeline{cfg: cfg}
}

// Artifacts returns the artifact layout in use.
func (p *Pipeline) Artifacts() Artifacts {
	return p.cfg.Artifacts
}

func (p *Pipeline) options() []Option {
	opts := []Option{WithRoot(p.cfg.Root), WithLogger(p.cfg.Logger)}
	return append(opts, p.cfg.Options...)
}

// Discover lists the source files selected by the include/exclude globs.
func (p *Pipeline) Discover() ([]string, error) {
	return Discover(p.cfg.Root, p.cfg.Include, p.cfg.Exclude)
}

// Extract runs the Literal Extractor and writes the extraction report.
func (p *Pipeline) Extract(ctx context.Context, paths []string) (*Extraction, error) {
	ext, err := NewExtractor(p.options()...).Extract(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := SaveReport(p.cfg.Artifacts.Report, ext.Report); err != nil {
		return nil, err
	}
	p.report = ext.Report
	return ext, nil
}

// Keys runs the Key Generator over the current report, preserving every key
// of the previous map, and writes the map, bundles and review file.
func (p *Pipeline) Keys(ctx context.Context) (*Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := p.report
	if report == nil {
		var err error
		if report, err = LoadReport(p.cfg.Artifacts.Report); err != nil {
			return nil, err
		}
	}

	prevMap, prevSecondary, err := LoadPrevious(p.cfg.Artifacts, p.cfg.SecondaryLocale)
	if err != nil {
		return nil, err
	}

	gen := NewKeyGenerator(
		WithMaxKeyLength(p.cfg.MaxKeyLength),
		WithLocales(p.cfg.PrimaryLocale, p.cfg.SecondaryLocale),
		WithPrevious(prevMap),
		WithPreviousSecondary(prevSecondary),
		WithDictionary(p.cfg.Dictionary),
		WithKeyLogger(p.cfg.Logger),
	).Generate(DistinctTexts(report))

	if err := SaveGeneration(p.cfg.Artifacts, gen); err != nil {
		return nil, err
	}
	p.keys = gen.Map
	return gen, nil
}

// Rewrite runs the Rewriter with the in-memory map, or the persisted one.
func (p *Pipeline) Rewrite(ctx context.Context, paths []string) (*RewriteReport, error) {
	keys := p.keys
	if keys == nil {
		var err error
		if keys, err = LoadMap(p.cfg.Artifacts.Map); err != nil {
			return nil, err
		}
	}
	return NewRewriter(keys, p.options()...).Rewrite(ctx, paths)
}

// Hooks runs the Hook Injector.
func (p *Pipeline) Hooks(ctx context.Context, paths []string) (*RewriteReport, error) {
	return NewHookInjector(p.options()...).Inject(ctx, paths)
}

// RunResult collects the outcome of every stage of Run.
type RunResult struct {
	Extraction *Extraction
	Generation *Generation
	Rewrite    *RewriteReport
	Hooks      *RewriteReport
}

// Summaries returns the per-stage summaries in execution order.
func (r *RunResult) Summaries() []Summary {
	var out []Summary
	if r.Extraction != nil {
		out = append(out, r.Extraction.Summary)
	}
	if r.Generation != nil {
		s := Summary{Stage: "keys", LiteralsFound: len(r.Generation.Map)}
		for _, err := range r.Generation.Failures {
			s.Failures = append(s.Failures, FileFailure{Stage: "keys", Message: err.Error()})
		}
		out = append(out, s)
	}
	if r.Rewrite != nil {
		out = append(out, r.Rewrite.Summary)
	}
	if r.Hooks != nil {
		out = append(out, r.Hooks.Summary)
	}
	return out
}

// Run executes extract, keys, rewrite and hooks in one invocation. Hooks run
// last so files that only gained the import during rewriting also receive
// the binding.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	paths, err := p.Discover()
	if err != nil {
		return nil, fmt.Errorf("discovering sources: %w", err)
	}

	result := &RunResult{}
	if result.Extraction, err = p.Extract(ctx, paths); err != nil {
		return result, fmt.Errorf("extract: %w", err)
	}
	if result.Generation, err = p.Keys(ctx); err != nil {
		return result, fmt.Errorf("keys: %w", err)
	}
	if result.Rewrite, err = p.Rewrite(ctx, paths); err != nil {
		return result, fmt.Errorf("rewrite: %w", err)
	}
	if result.Hooks, err = p.Hooks(ctx, paths); err != nil {
		return result, fmt.Errorf("hooks: %w", err)
	}
	return result, nil
}
