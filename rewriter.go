package i18nmig

import (
	"context"
	"errors"
	"os"
)

// Rewriter replaces mapped literals in UI sources with lookup calls.
type Rewriter struct {
	keys TranslationMap
	cfg  passConfig
}

// NewRewriter creates a Rewriter for the given map. The map is read-only
// for the lifetime of the Rewriter.
func NewRewriter(keys TranslationMap, opts ...Option) *Rewriter {
	return &Rewriter{keys: keys, cfg: newPassConfig(opts)}
}

// FileOutcome is the per-file result of a rewriting pass.
type FileOutcome struct {
	Path    string
	Changed bool // Whether the file was (or, in dry-run mode, would be) modified
	Edits   int
	Import  bool
	Hooks   int
	Skipped string // Reason the file was left alone, if any
}

// RewriteReport is the result of a Rewriter or HookInjector pass.
type RewriteReport struct {
	Files   []FileOutcome
	Summary Summary
	DryRun  bool
}

// Changed reports whether the file at the root-relative path changed.
func (r *RewriteReport) Changed(path string) bool {
	for _, f := range r.Files {
		if f.Path == path {
			return f.Changed
		}
	}
	return false
}

type rewriteFunc func(ctx context.Context, proc SourceProcessor, unit SourceUnit) (*RewriteResult, error)

// Rewrite processes every file. Files with no applicable literal are left
// byte-for-byte unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, paths []string) (*RewriteReport, error) {
	if r.keys == nil {
		return nil, &MissingArtifactError{Artifact: "translation map", Path: "(none)", Hint: "i18nmig keys"}
	}
	return runRewritePass(ctx, &r.cfg, "rewrite", paths, func(ctx context.Context, proc SourceProcessor, unit SourceUnit) (*RewriteResult, error) {
		return proc.Rewrite(ctx, unit, r.keys)
	})
}

func runRewritePass(ctx context.Context, cfg *passConfig, stage string, paths []string, fn rewriteFunc) (*RewriteReport, error) {
	outcomes := make([]FileOutcome, len(paths))
	failures := make([]*FileFailure, len(paths))

	err := forEachFile(ctx, cfg.workers, paths, func(ctx context.Context, i int, path string) {
		outcomes[i], failures[i] = rewriteFile(ctx, cfg, stage, path, fn)
	})
	if err != nil {
		return nil, err
	}

	report := &RewriteReport{
		Files:   outcomes,
		Summary: Summary{Stage: stage, FilesScanned: len(paths)},
		DryRun:  cfg.dryRun,
	}
	for i, outcome := range outcomes {
		if failures[i] != nil {
			report.Summary.Failures = append(report.Summary.Failures, *failures[i])
		}
		if outcome.Changed {
			report.Summary.FilesChanged++
			report.Summary.EditsApplied += outcome.Edits + outcome.Hooks
		}
	}

	cfg.logger.Info().
		Str("stage", stage).
		Int("files", report.Summary.FilesScanned).
		Int("changed", report.Summary.FilesChanged).
		Int("edits", report.Summary.EditsApplied).
		Int("failures", len(report.Summary.Failures)).
		Bool("dry_run", cfg.dryRun).
		Msg("pass finished")

	return report, nil
}

func rewriteFile(ctx context.Context, cfg *passConfig, stage, path string, fn rewriteFunc) (FileOutcome, *FileFailure) {
	rel := relPath(cfg.root, path)
	outcome := FileOutcome{Path: rel}
	fail := func(err error) (FileOutcome, *FileFailure) {
		outcome.Skipped = err.Error()
		cfg.logger.Warn().Str("stage", stage).Str("file", rel).Err(err).Msg("file skipped")
		return outcome, &FileFailure{Path: rel, Stage: stage, Message: err.Error()}
	}

	proc, ok := cfg.processorFor(path)
	if !ok {
		return fail(errors.New("no processor for file type"))
	}

	src, err := os.ReadFile(path) // #nosec G304 - paths come from Discover
	if err != nil {
		return fail(err)
	}

	unit := SourceUnit{Path: path, Source: src}
	res, err := fn(ctx, proc, unit)
	if err != nil {
		return fail(err)
	}
	if !res.Changed() {
		return outcome, nil
	}

	if err := cfg.commit(ctx, proc, unit, res.Output); err != nil {
		return fail(err)
	}

	outcome.Changed = true
	outcome.Edits = len(res.Edits)
	outcome.Import = res.Import
	outcome.Hooks = res.Hooks
	cfg.logger.Debug().Str("stage", stage).Str("file", rel).Int("edits", outcome.Edits).Int("hooks", outcome.Hooks).Msg("file rewritten")
	return outcome, nil
}
