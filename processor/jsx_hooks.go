package processor

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/ZaguanLabs/i18nmig"
	sitter "github.com/smacker/go-tree-sitter"
)

// component is a top-level function-like declaration that may need the
// lookup binding.
type component struct {
	fn     *sitter.Node // function or arrow node
	body   *sitter.Node
	anchor *sitter.Node // statement whose line sets the indentation
	name   string       // binding name, "" when anonymous
	// wrapped is set for functions passed to memo or forwardRef.
	wrapped bool
}

// componentWrappers are the calls whose function argument is a component.
var componentWrappers = map[string]bool{"memo": true, "forwardRef": true}

// named reports whether c is a component by React's conventions: a
// capitalized binding or a memo/forwardRef argument.
func (c component) named() bool {
	if c.wrapped {
		return true
	}
	r, _ := utf8.DecodeRuneInString(c.name)
	return unicode.IsUpper(r)
}

// concise reports whether the body is an expression rather than a block.
func (c component) concise() bool {
	return c.body.Type() != "statement_block"
}

// InjectHooks adds the lookup binding to every top-level function body that
// calls the lookup, and to every component whose JSX still holds a literal
// the rewriter will replace, unless the body already has the binding. Files
// that do not import the accessor, or that bind the lookup name at module
// scope, are returned unchanged.
func (p *JSXProcessor) InjectHooks(ctx context.Context, unit i18nmig.SourceUnit) (*i18nmig.RewriteResult, error) {
	root, err := p.parse(ctx, unit)
	if err != nil {
		return nil, err
	}

	src := unit.Source
	result := &i18nmig.RewriteResult{Output: src}
	if !p.hasAccessorImport(root, src) || p.lookupBoundAtModuleScope(root, src) {
		return result, nil
	}

	unitIndent := indentUnit(src)
	var edits []i18nmig.RewriteEdit
	for _, c := range components(root, src) {
		if !p.needsBinding(c, src) {
			continue
		}
		edits = append(edits, p.bindingEdit(c, src, unitIndent))
	}
	if len(edits) == 0 {
		return result, nil
	}

	result.Hooks = len(edits)
	result.Output = applyEdits(src, edits)
	return result, nil
}

// components lists the function-like declarations at program level,
// including exported ones and arrows wrapped in a call such as memo(...).
func components(root *sitter.Node, src []byte) []component {
	var out []component
	for _, stmt := range namedChildren(root) {
		out = append(out, componentsOf(stmt, stmt, src)...)
	}
	return out
}

func componentsOf(stmt, anchor *sitter.Node, src []byte) []component {
	switch classify(stmt) {
	case kindFunction:
		if c, ok := functionLike(stmt, anchor, src); ok {
			c.name = nodeText(stmt.ChildByFieldName("name"), src)
			return []component{c}
		}
	case kindExport:
		if d := stmt.ChildByFieldName("declaration"); d != nil {
			return componentsOf(d, anchor, src)
		}
		if v := stmt.ChildByFieldName("value"); v != nil {
			if c, ok := functionLike(v, anchor, src); ok {
				c.name = nodeText(v.ChildByFieldName("name"), src)
				return []component{c}
			}
		}
	case kindDeclaration:
		var out []component
		for _, d := range namedChildren(stmt) {
			if d.Type() != "variable_declarator" {
				continue
			}
			if c, ok := functionLike(d.ChildByFieldName("value"), anchor, src); ok {
				c.name = nodeText(d.ChildByFieldName("name"), src)
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// functionLike resolves v to a function body, looking one call deep for
// wrapped components.
func functionLike(v, anchor *sitter.Node, src []byte) (component, bool) {
	if v == nil {
		return component{}, false
	}
	switch classify(v) {
	case kindFunction, kindArrow:
		body := v.ChildByFieldName("body")
		if body == nil {
			return component{}, false
		}
		return component{fn: v, body: body, anchor: anchor}, true
	case kindCall:
		args := v.ChildByFieldName("arguments")
		if args == nil {
			return component{}, false
		}
		for _, arg := range namedChildren(args) {
			if k := classify(arg); k == kindFunction || k == kindArrow {
				c, ok := functionLike(arg, anchor, src)
				c.wrapped = ok && componentWrappers[wrapperName(v, src)]
				return c, ok
			}
		}
	}
	return component{}, false
}

// lookupBoundAtModuleScope reports whether the lookup name is already a
// module-level binding (import or top-level declaration).
func (p *JSXProcessor) lookupBoundAtModuleScope(root *sitter.Node, src []byte) bool {
	name := p.api.Lookup
	for _, stmt := range namedChildren(root) {
		if bindsAtTopLevel(stmt, src, name) {
			return true
		}
	}
	return false
}

func bindsAtTopLevel(stmt *sitter.Node, src []byte, name string) bool {
	switch classify(stmt) {
	case kindImport:
		found := false
		walk(stmt, func(n *sitter.Node, _ nodeKind) bool {
			if found {
				return false
			}
			switch n.Type() {
			case "import_specifier":
				found = importedAs(n, src) == name
				return false
			case "namespace_import":
				walk(n, func(id *sitter.Node, _ nodeKind) bool {
					if id.Type() == "identifier" && id.Content(src) == name {
						found = true
					}
					return !found
				})
				return false
			case "import_clause":
				for _, c := range namedChildren(n) {
					if c.Type() == "identifier" && c.Content(src) == name {
						found = true
					}
				}
			}
			return !found
		})
		return found
	case kindExport:
		if d := stmt.ChildByFieldName("declaration"); d != nil {
			return bindsAtTopLevel(d, src, name)
		}
	case kindDeclaration:
		for _, d := range namedChildren(stmt) {
			if d.Type() == "variable_declarator" && bindsName(d.ChildByFieldName("name"), src, name) {
				return true
			}
		}
	case kindFunction:
		if n := stmt.ChildByFieldName("name"); n != nil && n.Content(src) == name {
			return true
		}
	}
	return false
}

// needsBinding reports whether a body calls the lookup, or is a component
// rendering a literal that Rewrite will turn into a lookup call, while it
// neither calls the accessor nor binds the lookup name itself. Plain render
// helpers are left alone so no hook lands outside a component.
func (p *JSXProcessor) needsBinding(c component, src []byte) bool {
	calls, hasAccessor := false, false
	walk(c.body, func(n *sitter.Node, kind nodeKind) bool {
		if kind == kindCall {
			switch calleeName(n, src) {
			case p.api.Lookup:
				calls = true
			case p.api.Accessor:
				hasAccessor = true
			}
		}
		return !hasAccessor
	})
	if hasAccessor {
		return false
	}
	if !calls && !(c.named() && p.rendersLiteral(c.body, src)) {
		return false
	}
	return !p.bindsLocally(c, src)
}

// rendersLiteral reports whether any extractable literal sits under n.
func (p *JSXProcessor) rendersLiteral(n *sitter.Node, src []byte) bool {
	found := false
	p.scan(n, src, func(occurrence) { found = true })
	return found
}

// wrapperName returns the called name of a wrapper call, taking the
// property of member callees such as React.memo.
func wrapperName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn != nil && fn.Type() == "member_expression" {
		return nodeText(fn.ChildByFieldName("property"), src)
	}
	return calleeName(call, src)
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// bindsLocally reports whether the lookup name is a parameter or a
// declaration directly in the component body.
func (p *JSXProcessor) bindsLocally(c component, src []byte) bool {
	name := p.api.Lookup
	if params := c.fn.ChildByFieldName("parameters"); params != nil && bindsName(params, src, name) {
		return true
	}
	if param := c.fn.ChildByFieldName("parameter"); param != nil && bindsName(param, src, name) {
		return true
	}
	if c.concise() {
		return false
	}
	for _, stmt := range namedChildren(c.body) {
		if classify(stmt) == kindDeclaration && bindsAtTopLevel(stmt, src, name) {
			return true
		}
	}
	return false
}

// bindingEdit plans the statement insertion for a component. Concise arrow
// bodies become a block that returns the original expression.
func (p *JSXProcessor) bindingEdit(c component, src []byte, unit string) i18nmig.RewriteEdit {
	binding := "const { " + p.api.Lookup + " } = " + p.api.Accessor + "();"
	base, _ := lineIndent(src, int(c.anchor.StartByte()))
	inner := base + unit

	if c.concise() {
		start, end := int(c.body.StartByte()), int(c.body.EndByte())
		return i18nmig.RewriteEdit{
			Start: start,
			End:   end,
			Replacement: "{\n" + inner + binding + "\n" +
				inner + "return " + string(src[start:end]) + ";\n" +
				base + "}",
		}
	}

	stmts := namedChildren(c.body)
	if len(stmts) == 0 {
		pos := int(c.body.StartByte()) + 1
		return i18nmig.RewriteEdit{Start: pos, End: pos, Replacement: "\n" + inner + binding + "\n" + base}
	}

	first := stmts[0]
	pos := int(first.StartByte())
	indent, ownLine := lineIndent(src, pos)
	if !ownLine {
		indent = inner
	}
	return i18nmig.RewriteEdit{Start: pos, End: pos, Replacement: binding + "\n" + indent}
}
