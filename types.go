package i18nmig

import "sort"

// SourceUnit is one UI source file as read from disk.
// Processors parse Source into a fresh tree on every call; no tree outlives
// the call that built it.
type SourceUnit struct {
	Path   string
	Source []byte
}

// ExtractedLiteral is a candidate for localization.
type ExtractedLiteral struct {
	Text   string   // Normalized text (entities decoded, whitespace collapsed, trimmed)
	File   string   // Originating file
	Attr   string   // Attribute name; empty for element text content
	Attrs  []string // Other attribute names seen with the same text in this file
	Line   int      // 1-based line of the first occurrence
	Column int      // 1-based column of the first occurrence
}

// IsAttribute reports whether the literal came from an attribute value.
func (l ExtractedLiteral) IsAttribute() bool {
	return l.Attr != ""
}

// TranslationMap maps normalized literal text to its lookup key.
type TranslationMap map[string]string

// KeyFor returns the key assigned to text.
func (m TranslationMap) KeyFor(text string) (string, bool) {
	key, ok := m[text]
	return key, ok
}

// Has reports whether text has an assigned key.
func (m TranslationMap) Has(text string) bool {
	_, ok := m[text]
	return ok
}

// Texts returns the mapped texts in lexicographic order.
func (m TranslationMap) Texts() []string {
	texts := make([]string, 0, len(m))
	for text := range m {
		texts = append(texts, text)
	}
	sort.Strings(texts)
	return texts
}

// Keys returns the assigned keys in lexicographic order.
func (m TranslationMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Inverse returns the key -> text association.
func (m TranslationMap) Inverse() map[string]string {
	inv := make(map[string]string, len(m))
	for text, key := range m {
		inv[key] = text
	}
	return inv
}

// Clone returns a shallow copy of the map.
func (m TranslationMap) Clone() TranslationMap {
	out := make(TranslationMap, len(m))
	for text, key := range m {
		out[text] = key
	}
	return out
}

// ResourceBundle maps lookup keys to display text for one locale.
type ResourceBundle map[string]string

// Keys returns the bundle keys in lexicographic order.
func (b ResourceBundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for key := range b {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RewriteEdit is a planned replacement of one literal occurrence.
type RewriteEdit struct {
	Start       int    // Byte offset of the replaced span
	End         int    // Byte offset one past the replaced span
	Replacement string // Text written in place of the span
	Key         string // Lookup key, empty for scaffolding edits
	Attr        string // Attribute name for attribute edits
}

// RewriteResult is the outcome of rewriting one SourceUnit in memory.
type RewriteResult struct {
	Output []byte        // Rewritten source; equal to the input when Edits is empty
	Edits  []RewriteEdit // Applied literal edits
	Import bool          // Whether a localization import was injected
	Hooks  int           // Number of lookup bindings injected
}

// Changed reports whether the rewrite produced any modification.
func (r *RewriteResult) Changed() bool {
	return r != nil && (len(r.Edits) > 0 || r.Import || r.Hooks > 0)
}

// RuntimeAPI describes the runtime localization library the rewritten code
// calls into.
type RuntimeAPI struct {
	Module   string // Import source, e.g. "react-i18next"
	Accessor string // Hook returning the lookup function, e.g. "useTranslation"
	Lookup   string // Lookup function name, e.g. "t"
}

// DefaultRuntimeAPI returns the react-i18next conventions.
func DefaultRuntimeAPI() RuntimeAPI {
	return RuntimeAPI{
		Module:   "react-i18next",
		Accessor: "useTranslation",
		Lookup:   "t",
	}
}

// FileFailure records a per-file problem that did not abort the batch.
type FileFailure struct {
	Path    string
	Stage   string
	Message string
}

// Summary is the user-visible outcome of one pass.
type Summary struct {
	Stage         string
	FilesScanned  int
	FilesChanged  int
	LiteralsFound int
	EditsApplied  int
	Failures      []FileFailure
}

// Failed reports whether any file-level failure was recorded.
func (s *Summary) Failed() bool {
	return len(s.Failures) > 0
}

// IgnoredTags contains HTML tags whose content is never extracted.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// DefaultSkipAttributes lists attributes whose string values are markup
// plumbing rather than user-visible text. Names ending in "-" match a prefix.
var DefaultSkipAttributes = []string{
	"className", "class", "id", "key", "ref", "style", "type", "name",
	"href", "src", "srcSet", "to", "rel", "target", "role", "htmlFor", "for",
	"method", "action", "autoComplete", "autocomplete", "inputMode",
	"variant", "size", "color", "align", "justify", "direction", "width",
	"height", "fill", "stroke", "viewBox", "d", "xmlns", "lang", "dir",
	"data-", "aria-hidden", "aria-controls", "aria-describedby",
	"aria-labelledby", "testId", "data-testid", "as", "icon", "path",
	"format", "accept", "pattern", "step", "min", "max",
}

// AttributeFilter decides which attributes carry user-visible text.
type AttributeFilter struct {
	exact  map[string]bool
	prefix []string
}

// NewAttributeFilter builds a filter from a skip list.
func NewAttributeFilter(skip []string) *AttributeFilter {
	f := &AttributeFilter{exact: make(map[string]bool)}
	for _, name := range skip {
		if name == "" {
			continue
		}
		if name[len(name)-1] == '-' {
			f.prefix = append(f.prefix, name)
			continue
		}
		f.exact[name] = true
	}
	return f
}

// Allows reports whether values of the named attribute are extractable.
func (f *AttributeFilter) Allows(name string) bool {
	if f == nil {
		return true
	}
	if f.exact[name] {
		return false
	}
	for _, p := range f.prefix {
		if len(name) >= len(p) && name[:len(p)] == p {
			return false
		}
	}
	return true
}

// Report groups extracted literals by file path. Within a file literals are
// in source order and unique by Text.
type Report map[string][]ExtractedLiteral

// Paths returns the report's file paths in lexicographic order.
func (r Report) Paths() []string {
	paths := make([]string, 0, len(r))
	for path := range r {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Count returns the total number of literals across all files.
func (r Report) Count() int {
	n := 0
	for _, lits := range r {
		n += len(lits)
	}
	return n
}
