package processor

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/i18nmig"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TranslateAttribute is the attribute the i18next DOM bindings read keys
// from. Attribute keys use the "[title]key" form; entries are separated
// by ";".
const TranslateAttribute = "data-i18n"

// DefaultHTMLAttributes lists the attributes extracted from HTML pages.
// Markup attributes are open-ended in HTML, so the processor uses an allow
// list rather than the JSX skip list.
var DefaultHTMLAttributes = []string{"title", "alt", "placeholder", "aria-label", "label", "summary"}

var fullDocument = regexp.MustCompile(`(?is)^\s*(<!--.*?-->\s*)*(<!doctype|<html)`)

// HTMLProcessor extracts literals from HTML pages and annotates elements
// with data-i18n keys instead of replacing their text.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	attributes  map[string]bool
}

// HTMLOption configures the HTML processor.
type HTMLOption func(*HTMLProcessor)

// WithIgnoredTags replaces the tags whose content is never extracted.
func WithIgnoredTags(tags []string) HTMLOption {
	return func(p *HTMLProcessor) {
		ignored := make(map[string]bool, len(tags))
		for _, tag := range tags {
			ignored[strings.ToLower(tag)] = true
		}
		p.ignoredTags = ignored
	}
}

// WithHTMLAttributes replaces the extracted attribute names.
func WithHTMLAttributes(names []string) HTMLOption {
	return func(p *HTMLProcessor) {
		attrs := make(map[string]bool, len(names))
		for _, name := range names {
			attrs[strings.ToLower(name)] = true
		}
		p.attributes = attrs
	}
}

// NewHTMLProcessor creates an HTML processor with the default ignored tags
// and attributes.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{ignoredTags: i18nmig.IgnoredTags}
	WithHTMLAttributes(DefaultHTMLAttributes)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns "html".
func (p *HTMLProcessor) Language() string {
	return "html"
}

// Extensions returns the handled file extensions.
func (p *HTMLProcessor) Extensions() []string {
	return []string{".html", ".htm"}
}

// htmlDoc is a parsed page. Fragments (partials without an <html> root)
// hang off a synthetic document node so serialization does not add the
// html/head/body wrappers the full parser would synthesize.
type htmlDoc struct {
	doc      *goquery.Document
	root     *html.Node
	fragment bool
}

func (p *HTMLProcessor) parse(unit i18nmig.SourceUnit) (*htmlDoc, error) {
	if fullDocument.Match(unit.Source) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(unit.Source))
		if err != nil {
			return nil, &i18nmig.ParseError{Path: unit.Path, Message: "failed to parse HTML", Language: "html", Cause: err}
		}
		return &htmlDoc{doc: doc, root: doc.Nodes[0]}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(unit.Source), body)
	if err != nil {
		return nil, &i18nmig.ParseError{Path: unit.Path, Message: "failed to parse HTML fragment", Language: "html", Cause: err}
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &htmlDoc{doc: goquery.NewDocumentFromNode(root), root: root, fragment: true}, nil
}

func (d *htmlDoc) render() ([]byte, error) {
	if !d.fragment {
		out, err := d.doc.Html()
		return []byte(out), err
	}
	var buf bytes.Buffer
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// htmlOccurrence is a literal found on an element.
type htmlOccurrence struct {
	sel  *goquery.Selection
	text string
	attr string
}

// scan visits literals in document order. Only elements whose children are
// all text contribute their text: annotating a mixed-content element would
// let the runtime overwrite its child elements.
func (p *HTMLProcessor) scan(d *htmlDoc, visit func(htmlOccurrence)) {
	d.doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if p.skipped(s) {
			return
		}
		entries := parseEntries(s.AttrOr(TranslateAttribute, ""))

		// The start tag's attributes precede the element's text.
		for _, a := range s.Nodes[0].Attr {
			name := strings.ToLower(a.Key)
			if !p.attributes[name] || entries.hasAttr(name) {
				continue
			}
			text := i18nmig.NormalizeText(a.Val)
			if i18nmig.IsExtractable(text) {
				visit(htmlOccurrence{sel: s, text: text, attr: name})
			}
		}

		if s.Children().Length() == 0 && !entries.hasText() {
			text := i18nmig.NormalizeText(s.Text())
			if i18nmig.IsExtractable(text) {
				visit(htmlOccurrence{sel: s, text: text})
			}
		}
	})
}

// skipped reports whether s is, or sits inside, an ignored tag or a
// data-no-translate subtree.
func (p *HTMLProcessor) skipped(s *goquery.Selection) bool {
	for n := s.Nodes[0]; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if p.ignoredTags[strings.ToLower(n.Data)] {
			return true
		}
		for _, a := range n.Attr {
			if a.Key == "data-no-translate" {
				return true
			}
		}
	}
	return false
}

// Extract returns every literal occurrence in document order. HTML nodes
// carry no source positions, so Line and Column stay zero.
func (p *HTMLProcessor) Extract(ctx context.Context, unit i18nmig.SourceUnit) ([]i18nmig.ExtractedLiteral, error) {
	d, err := p.parse(unit)
	if err != nil {
		return nil, err
	}

	var lits []i18nmig.ExtractedLiteral
	p.scan(d, func(o htmlOccurrence) {
		lits = append(lits, i18nmig.ExtractedLiteral{Text: o.text, File: unit.Path, Attr: o.attr})
	})
	return lits, nil
}

// Rewrite annotates elements whose literals are mapped. The page is only
// re-serialized when an annotation was added.
func (p *HTMLProcessor) Rewrite(ctx context.Context, unit i18nmig.SourceUnit, keys i18nmig.TranslationMap) (*i18nmig.RewriteResult, error) {
	d, err := p.parse(unit)
	if err != nil {
		return nil, err
	}

	var edits []i18nmig.RewriteEdit
	p.scan(d, func(o htmlOccurrence) {
		key, ok := keys.KeyFor(o.text)
		if !ok {
			return
		}
		entry := key
		if o.attr != "" {
			entry = "[" + o.attr + "]" + key
		}
		entries := parseEntries(o.sel.AttrOr(TranslateAttribute, ""))
		if entries.contains(entry) {
			return
		}
		o.sel.SetAttr(TranslateAttribute, entries.add(entry).String())
		edits = append(edits, i18nmig.RewriteEdit{Replacement: entry, Key: key, Attr: o.attr})
	})

	result := &i18nmig.RewriteResult{Output: unit.Source}
	if len(edits) == 0 {
		return result, nil
	}

	out, err := d.render()
	if err != nil {
		return nil, &i18nmig.WriteError{Path: unit.Path, Message: "failed to serialize HTML", Cause: err}
	}
	result.Output = out
	result.Edits = edits
	return result, nil
}

// Validate parses the page. The HTML parser recovers from malformed
// markup, so only reader failures are reported.
func (p *HTMLProcessor) Validate(ctx context.Context, unit i18nmig.SourceUnit) error {
	_, err := p.parse(unit)
	return err
}

// i18nEntries is the parsed value of a data-i18n attribute.
type i18nEntries []string

func parseEntries(value string) i18nEntries {
	var out i18nEntries
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e i18nEntries) contains(entry string) bool {
	for _, x := range e {
		if x == entry {
			return true
		}
	}
	return false
}

// hasText reports whether an entry targets the element text.
func (e i18nEntries) hasText() bool {
	for _, x := range e {
		if !strings.HasPrefix(x, "[") || strings.HasPrefix(x, "[text]") || strings.HasPrefix(x, "[html]") {
			return true
		}
	}
	return false
}

func (e i18nEntries) hasAttr(name string) bool {
	prefix := "[" + name + "]"
	for _, x := range e {
		if strings.HasPrefix(x, prefix) {
			return true
		}
	}
	return false
}

func (e i18nEntries) add(entry string) i18nEntries {
	return append(e, entry)
}

func (e i18nEntries) String() string {
	return strings.Join(e, ";")
}

var _ i18nmig.SourceProcessor = (*HTMLProcessor)(nil)
