package processor

import sitter "github.com/smacker/go-tree-sitter"

// nodeKind is the closed set of syntax shapes the passes act on. Every pass
// dispatches on classify instead of matching grammar names itself.
type nodeKind int

const (
	kindOther       nodeKind = iota
	kindElement              // jsx_element, jsx_fragment, jsx_self_closing_element
	kindText                 // jsx_text, html_character_reference
	kindAttribute            // jsx_attribute
	kindExpression           // jsx_expression
	kindCall                 // call_expression
	kindFunction             // function declarations and expressions
	kindArrow                // arrow_function
	kindImport               // import_statement
	kindDeclaration          // lexical_declaration, variable_declaration
	kindExport               // export_statement
)

func (k nodeKind) String() string {
	switch k {
	case kindElement:
		return "element"
	case kindText:
		return "text"
	case kindAttribute:
		return "attribute"
	case kindExpression:
		return "expression"
	case kindCall:
		return "call"
	case kindFunction:
		return "function"
	case kindArrow:
		return "arrow"
	case kindImport:
		return "import"
	case kindDeclaration:
		return "declaration"
	case kindExport:
		return "export"
	default:
		return "other"
	}
}

// classify maps a tree-sitter node to its kind. Anonymous nodes (keywords
// and punctuation) are always kindOther.
func classify(n *sitter.Node) nodeKind {
	if n == nil || !n.IsNamed() {
		return kindOther
	}
	switch n.Type() {
	case "jsx_element", "jsx_fragment", "jsx_self_closing_element":
		return kindElement
	case "jsx_text", "html_character_reference":
		return kindText
	case "jsx_attribute":
		return kindAttribute
	case "jsx_expression":
		return kindExpression
	case "call_expression":
		return kindCall
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function":
		return kindFunction
	case "arrow_function":
		return kindArrow
	case "import_statement":
		return kindImport
	case "lexical_declaration", "variable_declaration":
		return kindDeclaration
	case "export_statement":
		return kindExport
	default:
		return kindOther
	}
}

// walk visits n and its named descendants in source order. Children are
// skipped when visit returns false.
func walk(n *sitter.Node, visit func(n *sitter.Node, kind nodeKind) bool) {
	if n == nil {
		return
	}
	if !visit(n, classify(n)) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// namedChildren returns n's named children.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// textRuns groups the maximal sequences of consecutive text children of an
// element. Entity references split jsx_text nodes in some grammar versions;
// a run puts them back together.
func textRuns(element *sitter.Node) [][]*sitter.Node {
	var runs [][]*sitter.Node
	var current []*sitter.Node

	for _, c := range namedChildren(element) {
		if classify(c) == kindText {
			current = append(current, c)
			continue
		}
		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// firstError returns the first ERROR or MISSING node under n.
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			if e := firstError(c); e != nil {
				return e
			}
		}
	}
	return nil
}

// calleeName returns the identifier called by a call_expression, or "".
func calleeName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return ""
	}
	return fn.Content(src)
}

// bindsName reports whether a binding pattern (identifier, object or array
// pattern) introduces name.
func bindsName(pattern *sitter.Node, src []byte, name string) bool {
	found := false
	walk(pattern, func(n *sitter.Node, _ nodeKind) bool {
		if found {
			return false
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			if n.Content(src) == name {
				found = true
				return false
			}
		case "pair_pattern":
			// The key is a property name, only the value binds.
			walk(n.ChildByFieldName("value"), func(v *sitter.Node, _ nodeKind) bool {
				if !found && (v.Type() == "identifier" || v.Type() == "shorthand_property_identifier_pattern") && v.Content(src) == name {
					found = true
				}
				return !found
			})
			return false
		case "assignment_pattern", "object_assignment_pattern":
			walk(n.ChildByFieldName("left"), func(v *sitter.Node, _ nodeKind) bool {
				if !found && (v.Type() == "identifier" || v.Type() == "shorthand_property_identifier_pattern") && v.Content(src) == name {
					found = true
				}
				return !found
			})
			return false
		}
		return true
	})
	return found
}
