package i18nmig

import (
	"context"
	"path/filepath"
	"strings"
)

// SourceProcessor parses one family of UI sources. Every call parses its
// input afresh; no syntax tree is retained between calls.
type SourceProcessor interface {
	// Language names the processor in logs and errors, e.g. "jsx".
	Language() string

	// Extensions lists the file extensions handled, with leading dot.
	Extensions() []string

	// Extract returns every literal occurrence in source order. Texts are
	// normalized; duplicates are collapsed by the caller.
	Extract(ctx context.Context, unit SourceUnit) ([]ExtractedLiteral, error)

	// Rewrite replaces mapped literals with lookup calls. A result without
	// edits carries the input unchanged.
	Rewrite(ctx context.Context, unit SourceUnit, keys TranslationMap) (*RewriteResult, error)

	// Validate parses src and fails if it contains syntax errors.
	Validate(ctx context.Context, unit SourceUnit) error
}

// HookProcessor is a SourceProcessor that can bind the lookup function in
// component bodies.
type HookProcessor interface {
	SourceProcessor

	// InjectHooks adds the lookup binding to every eligible component body.
	InjectHooks(ctx context.Context, unit SourceUnit) (*RewriteResult, error)
}

// DirtyChecker reports whether a file has uncommitted changes.
type DirtyChecker interface {
	IsDirty(path string) (bool, error)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// processorFor returns the processor registered for path's extension.
func (c *passConfig) processorFor(path string) (SourceProcessor, bool) {
	p, ok := c.processors[normalizeExt(filepath.Ext(path))]
	return p, ok
}
