// Package processor provides the source processors the passes dispatch to:
// a tree-sitter based processor for JSX/TSX and a goquery based processor
// for plain HTML pages.
package processor

import "github.com/ZaguanLabs/i18nmig"

// SourceProcessor is an alias to the main package interface.
type SourceProcessor = i18nmig.SourceProcessor

// HookProcessor is an alias to the main package interface.
type HookProcessor = i18nmig.HookProcessor

// Defaults returns the processors for every supported source family.
func Defaults(api i18nmig.RuntimeAPI, skipAttributes []string) []SourceProcessor {
	return []SourceProcessor{
		NewJSXProcessor(WithRuntime(api), WithSkipAttributes(skipAttributes)),
		NewHTMLProcessor(),
	}
}
