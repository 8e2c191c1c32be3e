package processor

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/ZaguanLabs/i18nmig"
	sitter "github.com/smacker/go-tree-sitter"
)

// applyEdits splices non-overlapping edits into src.
func applyEdits(src []byte, edits []i18nmig.RewriteEdit) []byte {
	ordered := append([]i18nmig.RewriteEdit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var buf bytes.Buffer
	buf.Grow(len(src) + 32*len(ordered))
	pos := 0
	for _, e := range ordered {
		buf.Write(src[pos:e.Start])
		buf.WriteString(e.Replacement)
		pos = e.End
	}
	buf.Write(src[pos:])
	return buf.Bytes()
}

// importSource returns the unquoted module of an import statement.
func importSource(imp *sitter.Node, src []byte) string {
	source := imp.ChildByFieldName("source")
	if source == nil {
		return ""
	}
	raw := source.Content(src)
	if len(raw) < 2 {
		return ""
	}
	return raw[1 : len(raw)-1]
}

// importedAs returns the local name an import_specifier binds.
func importedAs(spec *sitter.Node, src []byte) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return alias.Content(src)
	}
	if name := spec.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	return ""
}

// topLevelImports returns the program's import statements in order.
func topLevelImports(root *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, stmt := range namedChildren(root) {
		if classify(stmt) == kindImport {
			out = append(out, stmt)
		}
	}
	return out
}

// hasAccessorImport reports whether the accessor is imported, unaliased,
// from the runtime module.
func (p *JSXProcessor) hasAccessorImport(root *sitter.Node, src []byte) bool {
	for _, imp := range topLevelImports(root) {
		if importSource(imp, src) != p.api.Module {
			continue
		}
		found := false
		walk(imp, func(n *sitter.Node, _ nodeKind) bool {
			if n.Type() == "import_specifier" {
				name := n.ChildByFieldName("name")
				if name != nil && name.Content(src) == p.api.Accessor && importedAs(n, src) == p.api.Accessor {
					found = true
				}
				return false
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

// importEdit plans the accessor import, or returns nil when the file
// already has it. An existing named import from the module is extended;
// otherwise a statement goes before the first import, or at the top after
// any directive prologue.
func (p *JSXProcessor) importEdit(root *sitter.Node, src []byte) *i18nmig.RewriteEdit {
	if p.hasAccessorImport(root, src) {
		return nil
	}

	imports := topLevelImports(root)
	for _, imp := range imports {
		if importSource(imp, src) != p.api.Module {
			continue
		}
		var last *sitter.Node
		walk(imp, func(n *sitter.Node, _ nodeKind) bool {
			if n.Type() == "import_specifier" {
				last = n
				return false
			}
			return true
		})
		if last != nil {
			pos := int(last.EndByte())
			return &i18nmig.RewriteEdit{Start: pos, End: pos, Replacement: ", " + p.api.Accessor}
		}
	}

	stmt := "import { " + p.api.Accessor + " } from " + strconv.Quote(p.api.Module) + ";"
	if len(imports) > 0 {
		pos := int(imports[0].StartByte())
		return &i18nmig.RewriteEdit{Start: pos, End: pos, Replacement: stmt + "\n"}
	}

	pos := prologueEnd(root, src)
	if pos == 0 {
		return &i18nmig.RewriteEdit{Start: 0, End: 0, Replacement: stmt + "\n\n"}
	}
	if pos >= len(src) {
		return &i18nmig.RewriteEdit{Start: len(src), End: len(src), Replacement: "\n" + stmt + "\n"}
	}
	return &i18nmig.RewriteEdit{Start: pos, End: pos, Replacement: stmt + "\n"}
}

// prologueEnd returns the offset of the line following the leading
// directives ("use client" and friends), or 0 when there are none.
func prologueEnd(root *sitter.Node, src []byte) int {
	end := 0
	for _, stmt := range namedChildren(root) {
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" {
			break
		}
		expr := stmt.NamedChild(0)
		if expr == nil || expr.Type() != "string" {
			break
		}
		end = int(stmt.EndByte())
	}
	if end == 0 {
		return 0
	}
	if nl := bytes.IndexByte(src[end:], '\n'); nl >= 0 {
		return end + nl + 1
	}
	return len(src)
}

// lineIndent returns the leading whitespace of the line containing pos and
// whether only whitespace precedes pos on that line.
func lineIndent(src []byte, pos int) (string, bool) {
	start := bytes.LastIndexByte(src[:pos], '\n') + 1
	i := start
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return string(src[start:i]), i >= pos
}

// indentUnit guesses the file's indentation step from its first indented
// line, defaulting to two spaces.
func indentUnit(src []byte) string {
	for _, line := range bytes.Split(src, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		switch line[0] {
		case '\t':
			return "\t"
		case ' ':
			n := len(line) - len(bytes.TrimLeft(line, " "))
			if n == 4 {
				return "    "
			}
			return "  "
		}
	}
	return "  "
}
