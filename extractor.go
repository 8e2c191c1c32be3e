package i18nmig

import (
	"context"
	"errors"
	"os"
)

// Extractor collects localizable literals from UI sources.
type Extractor struct {
	cfg passConfig
}

// NewExtractor creates an Extractor. At least one processor must be
// registered with WithProcessor for any file to be scanned.
func NewExtractor(opts ...Option) *Extractor {
	return &Extractor{cfg: newPassConfig(opts)}
}

// Extraction is the result of an extraction pass.
type Extraction struct {
	Report  Report
	Summary Summary
}

type extractSlot struct {
	path     string
	literals []ExtractedLiteral
	failure  *FileFailure
}

// Extract parses every file and groups its literals by root-relative path.
// Files that fail to read or parse are listed in the summary and left out
// of the report.
func (e *Extractor) Extract(ctx context.Context, paths []string) (*Extraction, error) {
	slots := make([]extractSlot, len(paths))

	err := forEachFile(ctx, e.cfg.workers, paths, func(ctx context.Context, i int, path string) {
		slots[i] = e.extractFile(ctx, path)
	})
	if err != nil {
		return nil, err
	}

	result := &Extraction{
		Report:  make(Report, len(paths)),
		Summary: Summary{Stage: "extract", FilesScanned: len(paths)},
	}
	for _, slot := range slots {
		if slot.failure != nil {
			result.Summary.Failures = append(result.Summary.Failures, *slot.failure)
			continue
		}
		result.Report[slot.path] = slot.literals
		result.Summary.LiteralsFound += len(slot.literals)
	}

	e.cfg.logger.Info().
		Int("files", result.Summary.FilesScanned).
		Int("literals", result.Summary.LiteralsFound).
		Int("failures", len(result.Summary.Failures)).
		Msg("extraction finished")

	return result, nil
}

func (e *Extractor) extractFile(ctx context.Context, path string) extractSlot {
	rel := relPath(e.cfg.root, path)
	slot := extractSlot{path: rel}

	proc, ok := e.cfg.processorFor(path)
	if !ok {
		slot.failure = &FileFailure{Path: rel, Stage: "extract", Message: "no processor for file type"}
		return slot
	}

	src, err := os.ReadFile(path) // #nosec G304 - paths come from Discover
	if err != nil {
		slot.failure = &FileFailure{Path: rel, Stage: "extract", Message: err.Error()}
		return slot
	}

	lits, err := proc.Extract(ctx, SourceUnit{Path: path, Source: src})
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			e.cfg.logger.Warn().Str("file", rel).Int("line", parseErr.Line).Msg("parse failed, skipping")
		}
		slot.failure = &FileFailure{Path: rel, Stage: "extract", Message: err.Error()}
		return slot
	}

	for i := range lits {
		lits[i].File = rel
	}
	slot.literals = dedupeLiterals(lits)
	return slot
}

// dedupeLiterals keeps the first occurrence of each extractable text.
// Attribute names of later occurrences are kept on the survivor, which is
// tagged as element text when the text also appears as one.
func dedupeLiterals(lits []ExtractedLiteral) []ExtractedLiteral {
	out := make([]ExtractedLiteral, 0, len(lits))
	index := make(map[string]int, len(lits))

	for _, lit := range lits {
		lit.Text = NormalizeText(lit.Text)
		if !IsExtractable(lit.Text) {
			continue
		}
		i, ok := index[lit.Text]
		if !ok {
			index[lit.Text] = len(out)
			out = append(out, lit)
			continue
		}
		survivor := &out[i]
		if lit.Attr == "" && survivor.Attr != "" {
			// Element text wins the primary slot; the attribute moves to Attrs.
			if !containsString(survivor.Attrs, survivor.Attr) {
				survivor.Attrs = append(survivor.Attrs, survivor.Attr)
			}
			survivor.Attr = ""
			continue
		}
		if lit.Attr != "" && lit.Attr != survivor.Attr && !containsString(survivor.Attrs, lit.Attr) {
			survivor.Attrs = append(survivor.Attrs, lit.Attr)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
