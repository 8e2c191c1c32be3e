package processor

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ZaguanLabs/i18nmig"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"golang.org/x/net/html"
)

// JSXProcessor extracts and rewrites literals in JSX and TSX sources using
// tree-sitter. It is safe for concurrent use; every call builds its own
// parser.
type JSXProcessor struct {
	api    i18nmig.RuntimeAPI
	filter *i18nmig.AttributeFilter
}

// JSXOption configures the JSX processor.
type JSXOption func(*JSXProcessor)

// WithRuntime sets the runtime localization API written into sources.
func WithRuntime(api i18nmig.RuntimeAPI) JSXOption {
	return func(p *JSXProcessor) {
		if api.Module != "" && api.Accessor != "" && api.Lookup != "" {
			p.api = api
		}
	}
}

// WithSkipAttributes replaces the attribute skip list. A nil list keeps the
// default.
func WithSkipAttributes(names []string) JSXOption {
	return func(p *JSXProcessor) {
		if names != nil {
			p.filter = i18nmig.NewAttributeFilter(names)
		}
	}
}

// NewJSXProcessor creates a JSX processor for the react-i18next runtime.
func NewJSXProcessor(opts ...JSXOption) *JSXProcessor {
	p := &JSXProcessor{
		api:    i18nmig.DefaultRuntimeAPI(),
		filter: i18nmig.NewAttributeFilter(i18nmig.DefaultSkipAttributes),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns "jsx".
func (p *JSXProcessor) Language() string {
	return "jsx"
}

// Extensions returns the handled file extensions.
func (p *JSXProcessor) Extensions() []string {
	return []string{".js", ".jsx", ".tsx"}
}

// occurrence is one literal found in a tree, with the byte span a rewrite
// replaces.
type occurrence struct {
	text   string
	attr   string
	start  int
	end    int
	line   int
	column int
}

// Extract returns every literal occurrence in source order.
func (p *JSXProcessor) Extract(ctx context.Context, unit i18nmig.SourceUnit) ([]i18nmig.ExtractedLiteral, error) {
	root, err := p.parse(ctx, unit)
	if err != nil {
		return nil, err
	}

	var lits []i18nmig.ExtractedLiteral
	p.scan(root, unit.Source, func(o occurrence) {
		lits = append(lits, i18nmig.ExtractedLiteral{
			Text:   o.text,
			File:   unit.Path,
			Attr:   o.attr,
			Line:   o.line,
			Column: o.column,
		})
	})
	return lits, nil
}

// Rewrite replaces every mapped literal with a lookup call and injects the
// accessor import when the file does not already have it. Unmapped
// literals are left in place.
func (p *JSXProcessor) Rewrite(ctx context.Context, unit i18nmig.SourceUnit, keys i18nmig.TranslationMap) (*i18nmig.RewriteResult, error) {
	root, err := p.parse(ctx, unit)
	if err != nil {
		return nil, err
	}

	var edits []i18nmig.RewriteEdit
	p.scan(root, unit.Source, func(o occurrence) {
		key, ok := keys.KeyFor(o.text)
		if !ok {
			return
		}
		edits = append(edits, i18nmig.RewriteEdit{
			Start:       o.start,
			End:         o.end,
			Replacement: p.lookupExpr(key),
			Key:         key,
			Attr:        o.attr,
		})
	})

	result := &i18nmig.RewriteResult{Output: unit.Source}
	if len(edits) == 0 {
		return result, nil
	}

	all := edits
	if imp := p.importEdit(root, unit.Source); imp != nil {
		all = append(append([]i18nmig.RewriteEdit(nil), edits...), *imp)
		result.Import = true
	}
	result.Edits = edits
	result.Output = applyEdits(unit.Source, all)
	return result, nil
}

// Validate reports whether the source parses without syntax errors.
func (p *JSXProcessor) Validate(ctx context.Context, unit i18nmig.SourceUnit) error {
	_, err := p.parse(ctx, unit)
	return err
}

// grammarFor picks the tree-sitter grammar for a path. Plain .js files may
// contain JSX, the JavaScript grammar accepts it.
func grammarFor(path string) (*sitter.Language, string) {
	if strings.EqualFold(filepath.Ext(path), ".tsx") {
		return tsx.GetLanguage(), "tsx"
	}
	return javascript.GetLanguage(), "jsx"
}

func (p *JSXProcessor) parse(ctx context.Context, unit i18nmig.SourceUnit) (*sitter.Node, error) {
	lang, name := grammarFor(unit.Path)

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, unit.Source)
	if err != nil {
		return nil, &i18nmig.ParseError{
			Path:     unit.Path,
			Message:  "parser failed",
			Language: name,
			Cause:    err,
		}
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &i18nmig.ParseError{
			Path:     unit.Path,
			Message:  "syntax error",
			Language: name,
		}
		if bad := firstError(root); bad != nil {
			perr.Line = int(bad.StartPoint().Row) + 1
		}
		return nil, perr
	}
	return root, nil
}

// scan reports literal occurrences in source order: element text runs and
// plain string attribute values. Strings inside expression containers are
// code, not literals, which also keeps rewritten lookups from matching.
func (p *JSXProcessor) scan(root *sitter.Node, src []byte, visit func(occurrence)) {
	var found []occurrence
	walk(root, func(n *sitter.Node, kind nodeKind) bool {
		switch kind {
		case kindElement:
			for _, run := range textRuns(n) {
				if o, ok := textOccurrence(run, src); ok {
					found = append(found, o)
				}
			}
		case kindAttribute:
			if o, ok := p.attributeOccurrence(n, src); ok {
				found = append(found, o)
			}
		}
		return true
	})

	// An element's text runs are seen before the attributes of its opening tag.
	sort.Slice(found, func(i, j int) bool {
		return found[i].start < found[j].start
	})
	for _, o := range found {
		visit(o)
	}
}

// textOccurrence turns a run of text children into an occurrence. The span
// excludes surrounding blanks, entity-encoded ones included, so layout
// survives the rewrite.
func textOccurrence(run []*sitter.Node, src []byte) (occurrence, bool) {
	start := int(run[0].StartByte())
	end := int(run[len(run)-1].EndByte())
	raw := src[start:end]

	text := i18nmig.NormalizeText(string(raw))
	if !i18nmig.IsExtractable(text) {
		return occurrence{}, false
	}

	lead, trail := blankEdges(raw)

	line, column := advance(run[0].StartPoint(), raw[:lead])
	return occurrence{
		text:   text,
		start:  start + lead,
		end:    end - trail,
		line:   line,
		column: column,
	}, true
}

func (p *JSXProcessor) attributeOccurrence(attr *sitter.Node, src []byte) (occurrence, bool) {
	children := namedChildren(attr)
	if len(children) < 2 {
		return occurrence{}, false
	}
	name, value := children[0], children[len(children)-1]
	if value.Type() != "string" {
		return occurrence{}, false
	}

	attrName := name.Content(src)
	if !p.filter.Allows(attrName) {
		return occurrence{}, false
	}

	raw := value.Content(src)
	if len(raw) < 2 {
		return occurrence{}, false
	}
	text := i18nmig.NormalizeText(raw[1 : len(raw)-1])
	if !i18nmig.IsExtractable(text) {
		return occurrence{}, false
	}

	pt := value.StartPoint()
	return occurrence{
		text:   text,
		attr:   attrName,
		start:  int(value.StartByte()),
		end:    int(value.EndByte()),
		line:   int(pt.Row) + 1,
		column: int(pt.Column) + 1,
	}, true
}

// blankEdges returns the byte lengths of raw's leading and trailing blanks:
// whitespace runes and character references such as &nbsp; that decode to
// whitespace. Normalization drops exactly these.
func blankEdges(raw []byte) (lead, trail int) {
	s := raw
	for len(s) > 0 {
		n := blankPrefix(s)
		if n == 0 {
			break
		}
		s = s[n:]
	}
	lead = len(raw) - len(s)
	for len(s) > 0 {
		n := blankSuffix(s)
		if n == 0 {
			break
		}
		s = s[:len(s)-n]
	}
	return lead, len(raw) - lead - len(s)
}

// maxReference bounds the length of a character reference.
const maxReference = 32

func blankPrefix(s []byte) int {
	if r, size := utf8.DecodeRune(s); unicode.IsSpace(r) {
		return size
	}
	if s[0] == '&' {
		if i := bytes.IndexByte(s, ';'); i > 0 && i < maxReference && blankReference(s[:i+1]) {
			return i + 1
		}
	}
	return 0
}

func blankSuffix(s []byte) int {
	if r, size := utf8.DecodeLastRune(s); unicode.IsSpace(r) {
		return size
	}
	if s[len(s)-1] == ';' {
		if i := bytes.LastIndexByte(s, '&'); i >= 0 && len(s)-i <= maxReference && blankReference(s[i:]) {
			return len(s) - i
		}
	}
	return 0
}

// blankReference reports whether ref is a character reference that decodes
// to whitespace only.
func blankReference(ref []byte) bool {
	decoded := html.UnescapeString(string(ref))
	return decoded != string(ref) && strings.TrimSpace(decoded) == ""
}

// lookupExpr renders the expression container replacing a literal.
func (p *JSXProcessor) lookupExpr(key string) string {
	return "{" + p.api.Lookup + "(" + strconv.Quote(key) + ")}"
}

// advance returns the 1-based line and column reached after skipping ws
// from pt.
func advance(pt sitter.Point, ws []byte) (int, int) {
	line, column := int(pt.Row)+1, int(pt.Column)+1
	for _, b := range ws {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

var (
	_ i18nmig.SourceProcessor = (*JSXProcessor)(nil)
	_ i18nmig.HookProcessor   = (*JSXProcessor)(nil)
)
