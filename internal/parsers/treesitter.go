package parsers

import (
	"context"
	"fmt"

	"github.com/mvp-joe/project-outline/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Visibility codes understood by the outline builders.
const (
	visibilityPrivate = iota
	visibilityProtected
	visibilityPublic
)

// treeSitterParser provides common tree-sitter parsing functionality.
type treeSitterParser struct {
	language *sitter.Language
	lang     string
}

// newTreeSitterParser creates a new tree-sitter parser for the given language.
func newTreeSitterParser(language *sitter.Language, lang string) *treeSitterParser {
	return &treeSitterParser{
		language: language,
		lang:     lang,
	}
}

// Language returns the language name.
func (p *treeSitterParser) Language() string {
	return p.lang
}

// parse runs tree-sitter over source and hands the root node to extract.
func (p *treeSitterParser) parse(ctx context.Context, source []byte, extract func(root *sitter.Node, source []byte) *extraction.Unit) (*extraction.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", p.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", p.lang)
	}
	defer tree.Close()

	unit := extract(tree.RootNode(), source)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return unit, nil
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeSpan returns the raw node fields for a declaration named name.
func nodeSpan(node *sitter.Node, name string) extraction.Node {
	return extraction.Node{
		Name:  name,
		Start: int(node.StartByte()),
		End:   int(node.EndByte()),
	}
}

// undecoratedSpan is nodeSpan without leading decorators or attributes, so
// the span opens on the line that names the declaration.
func undecoratedSpan(node *sitter.Node, name string) extraction.Node {
	span := nodeSpan(node, name)
	for _, child := range children(node) {
		kind := child.Kind()
		if kind == "decorator" || kind == "attribute_list" || kind == "comment" {
			continue
		}
		span.Start = int(child.StartByte())
		break
	}
	return span
}

// children returns all children of node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.ChildCount())
	result := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, node.Child(uint(i)))
	}
	return result
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for _, child := range children(node) {
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	for _, child := range children(node) {
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// hasChildOfType reports whether node has a direct child of any of the given types.
func hasChildOfType(node *sitter.Node, nodeTypes ...string) bool {
	for _, child := range children(node) {
		for _, t := range nodeTypes {
			if child.Kind() == t {
				return true
			}
		}
	}
	return false
}

// visibilityCode maps a modifier keyword to its visibility code.
func visibilityCode(keyword string) *int {
	switch keyword {
	case "private":
		return extraction.Int(visibilityPrivate)
	case "protected":
		return extraction.Int(visibilityProtected)
	case "public":
		return extraction.Int(visibilityPublic)
	}
	return nil
}
