package parsers

import (
	"context"
	"strings"

	"github.com/mvp-joe/project-outline/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typeScriptParser parses TypeScript and JavaScript files.
type typeScriptParser struct {
	*treeSitterParser
	extensions []string
}

// NewTypeScriptParser creates a new TypeScript parser.
func NewTypeScriptParser() *typeScriptParser {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return &typeScriptParser{
		treeSitterParser: newTreeSitterParser(lang, "typescript"),
		extensions:       []string{".ts", ".mts", ".cts", ".js", ".mjs", ".cjs"},
	}
}

// NewTSXParser creates a parser for TSX and JSX files.
func NewTSXParser() *typeScriptParser {
	lang := sitter.NewLanguage(typescript.LanguageTSX())
	return &typeScriptParser{
		treeSitterParser: newTreeSitterParser(lang, "tsx"),
		extensions:       []string{".tsx", ".jsx"},
	}
}

// Extensions returns the file extensions this parser handles.
func (p *typeScriptParser) Extensions() []string {
	return p.extensions
}

// Parse parses TypeScript source into a raw unit.
func (p *typeScriptParser) Parse(ctx context.Context, source []byte) (*extraction.Unit, error) {
	return p.parse(ctx, source, p.extractUnit)
}

// extractUnit walks the top-level statements of a program.
func (p *typeScriptParser) extractUnit(root *sitter.Node, source []byte) *extraction.Unit {
	unit := &extraction.Unit{}
	prologue := true

	for _, child := range children(root) {
		switch child.Kind() {
		case "comment", "hash_bang_line":
			continue
		case "expression_statement":
			if prologue && isUseStrict(child, source) {
				unit.Strict = true
			}
		case "import_statement":
			if imp := p.extractImport(child, source); imp != nil {
				unit.Imports = append(unit.Imports, imp)
			}
		case "export_statement":
			if decl := child.ChildByFieldName("declaration"); decl != nil {
				unit.Declarations = append(unit.Declarations, p.extractDeclaration(decl, source, true)...)
			}
		default:
			unit.Declarations = append(unit.Declarations, p.extractDeclaration(child, source, false)...)
		}
		if !isDirective(child) {
			prologue = false
		}
	}

	return unit
}

// isDirective reports whether a statement consists of a lone string literal.
func isDirective(node *sitter.Node) bool {
	return node.Kind() == "expression_statement" && node.NamedChildCount() == 1 && node.NamedChild(0).Kind() == "string"
}

// isUseStrict reports whether a statement is the "use strict" directive.
func isUseStrict(node *sitter.Node, source []byte) bool {
	str := findChildByType(node, "string")
	if str == nil {
		return false
	}
	return unquote(extractNodeText(str, source)) == "use strict"
}

// extractDeclaration converts one statement into zero or more declarations.
func (p *typeScriptParser) extractDeclaration(node *sitter.Node, source []byte, exported bool) []extraction.Declaration {
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		if c := p.extractClass(node, source, exported); c != nil {
			return []extraction.Declaration{c}
		}
	case "interface_declaration":
		if i := p.extractInterface(node, source, exported); i != nil {
			return []extraction.Declaration{i}
		}
	case "function_declaration", "generator_function_declaration":
		if f := p.extractFunction(node, source, exported); f != nil {
			return []extraction.Declaration{f}
		}
	case "lexical_declaration", "variable_declaration":
		return p.extractVariables(node, source, exported)
	}
	return nil
}

// extractClass extracts a class declaration with its members.
func (p *typeScriptParser) extractClass(node *sitter.Node, source []byte, exported bool) *extraction.Class {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	class := &extraction.Class{
		Node:     undecoratedSpan(node, extractNodeText(nameNode, source)),
		Exported: exported,
	}

	for _, member := range children(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_definition", "abstract_method_signature":
			m, ok := p.extractMethod(member, source)
			if !ok {
				continue
			}
			if m.Name == "constructor" {
				if class.Constructor == nil {
					class.Constructor = &m
				}
				continue
			}
			class.Methods = append(class.Methods, m)
		case "public_field_definition":
			if prop, ok := p.extractField(member, source); ok {
				class.Properties = append(class.Properties, prop)
			}
		}
	}

	return class
}

// extractInterface extracts an interface declaration with its signatures.
func (p *typeScriptParser) extractInterface(node *sitter.Node, source []byte, exported bool) *extraction.Interface {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	iface := &extraction.Interface{
		Node:     nodeSpan(node, extractNodeText(nameNode, source)),
		Exported: exported,
	}

	for _, member := range children(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_signature":
			if m, ok := p.extractMethod(member, source); ok {
				iface.Methods = append(iface.Methods, m)
			}
		case "property_signature":
			if prop, ok := p.extractField(member, source); ok {
				iface.Properties = append(iface.Properties, prop)
			}
		}
	}

	return iface
}

// extractMethod extracts a method definition or signature.
func (p *typeScriptParser) extractMethod(node *sitter.Node, source []byte) (extraction.Method, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return extraction.Method{}, false
	}

	m := extraction.Method{
		Node:       undecoratedSpan(node, extractNodeText(nameNode, source)),
		Static:     extraction.Bool(hasChildOfType(node, "static")),
		ReturnType: typeAnnotation(node.ChildByFieldName("return_type"), source),
		Parameters: p.extractParameters(node.ChildByFieldName("parameters"), source),
	}
	if mod := findChildByType(node, "accessibility_modifier"); mod != nil {
		m.Visibility = visibilityCode(extractNodeText(mod, source))
	} else if nameNode.Kind() == "private_property_identifier" {
		m.Visibility = extraction.Int(visibilityPrivate)
	}
	return m, true
}

// extractField extracts a class field or interface property signature.
func (p *typeScriptParser) extractField(node *sitter.Node, source []byte) (extraction.Property, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return extraction.Property{}, false
	}

	prop := extraction.Property{
		Node:     undecoratedSpan(node, extractNodeText(nameNode, source)),
		Static:   extraction.Bool(hasChildOfType(node, "static")),
		Readonly: extraction.Bool(hasChildOfType(node, "readonly")),
		Type:     typeAnnotation(node.ChildByFieldName("type"), source),
		Value:    p.extractValue(node.ChildByFieldName("value"), source),
	}
	if mod := findChildByType(node, "accessibility_modifier"); mod != nil {
		prop.Visibility = visibilityCode(extractNodeText(mod, source))
	} else if nameNode.Kind() == "private_property_identifier" {
		prop.Visibility = extraction.Int(visibilityPrivate)
	}
	return prop, true
}

// extractFunction extracts a top-level function declaration.
func (p *typeScriptParser) extractFunction(node *sitter.Node, source []byte, exported bool) *extraction.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	return &extraction.Function{
		Node:       nodeSpan(node, extractNodeText(nameNode, source)),
		Exported:   exported,
		ReturnType: typeAnnotation(node.ChildByFieldName("return_type"), source),
		Parameters: p.extractParameters(node.ChildByFieldName("parameters"), source),
	}
}

// extractVariables extracts each declarator of a const/let/var statement.
func (p *typeScriptParser) extractVariables(node *sitter.Node, source []byte, exported bool) []extraction.Declaration {
	isConst := false
	if kind := node.ChildByFieldName("kind"); kind != nil {
		isConst = extractNodeText(kind, source) == "const"
	} else {
		isConst = strings.HasPrefix(extractNodeText(node, source), "const")
	}

	var decls []extraction.Declaration
	for _, decl := range findChildrenByType(node, "variable_declarator") {
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}

		decls = append(decls, &extraction.Variable{
			Node:     nodeSpan(decl, extractNodeText(nameNode, source)),
			Exported: exported,
			Const:    isConst,
			Type:     typeAnnotation(decl.ChildByFieldName("type"), source),
			Value:    p.extractValue(decl.ChildByFieldName("value"), source),
		})
	}
	return decls
}

// extractParameters extracts formal parameters. Destructuring patterns keep
// their source text as the name.
func (p *typeScriptParser) extractParameters(node *sitter.Node, source []byte) []extraction.Parameter {
	var params []extraction.Parameter
	for _, child := range children(node) {
		switch child.Kind() {
		case "required_parameter", "optional_parameter":
			pattern := child.ChildByFieldName("pattern")
			if pattern == nil {
				continue
			}
			name := extractNodeText(pattern, source)
			if child.Kind() == "optional_parameter" {
				name += "?"
			}
			params = append(params, extraction.Parameter{
				Name:  name,
				Type:  typeAnnotation(child.ChildByFieldName("type"), source),
				Value: p.extractValue(child.ChildByFieldName("value"), source),
			})
		}
	}
	return params
}

// extractValue converts an initializer expression into a raw literal.
func (p *typeScriptParser) extractValue(node *sitter.Node, source []byte) *extraction.Value {
	if node == nil {
		return nil
	}

	text := extractNodeText(node, source)
	switch node.Kind() {
	case "string":
		return &extraction.Value{Type: "string", Raw: unquote(text)}
	case "number":
		return &extraction.Value{Type: "number", Raw: text}
	case "true", "false":
		return &extraction.Value{Type: "boolean", Raw: text}
	case "null":
		return &extraction.Value{Type: "null", Raw: text}
	case "unary_expression":
		if arg := node.ChildByFieldName("argument"); arg != nil && arg.Kind() == "number" {
			return &extraction.Value{Type: "number", Raw: text}
		}
	case "as_expression", "satisfies_expression":
		if inner := node.NamedChild(0); inner != nil {
			return p.extractValue(inner, source)
		}
	case "array":
		v := &extraction.Value{Type: "array", Raw: text}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			elem := node.NamedChild(uint(i))
			if elem.Kind() == "comment" {
				continue
			}
			v.Entries = append(v.Entries, extraction.Entry{Value: p.extractValue(elem, source)})
		}
		return v
	case "object":
		v := &extraction.Value{Type: "array", Raw: text}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			member := node.NamedChild(uint(i))
			switch member.Kind() {
			case "pair":
				v.Entries = append(v.Entries, extraction.Entry{
					Keyed: true,
					Key:   propertyKey(member.ChildByFieldName("key"), source),
					Value: p.extractValue(member.ChildByFieldName("value"), source),
				})
			case "shorthand_property_identifier":
				name := extractNodeText(member, source)
				v.Entries = append(v.Entries, extraction.Entry{
					Keyed: true,
					Key:   name,
					Value: &extraction.Value{Raw: name},
				})
			}
		}
		return v
	}

	return &extraction.Value{Raw: text}
}

// extractImport converts an import statement. Side-effect imports without
// bindings are skipped.
func (p *typeScriptParser) extractImport(node *sitter.Node, source []byte) extraction.Import {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		sourceNode = findChildByType(node, "string")
	}
	if sourceNode == nil {
		return nil
	}
	module := unquote(extractNodeText(sourceNode, source))
	start := int(node.StartByte())

	clause := findChildByType(node, "import_clause")
	if clause == nil {
		return nil
	}

	var specifiers []string
	for _, child := range children(clause) {
		switch child.Kind() {
		case "namespace_import":
			alias := findChildByType(child, "identifier")
			return &extraction.NamespaceImport{
				Module: module,
				Alias:  extractNodeText(alias, source),
				Start:  start,
			}
		case "identifier":
			specifiers = append(specifiers, "default as "+extractNodeText(child, source))
		case "named_imports":
			for _, spec := range findChildrenByType(child, "import_specifier") {
				name := extractNodeText(spec.ChildByFieldName("name"), source)
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					name += " as " + extractNodeText(alias, source)
				}
				specifiers = append(specifiers, name)
			}
		}
	}

	if len(specifiers) == 0 {
		return nil
	}
	return &extraction.NamedImport{Module: module, Specifiers: specifiers, Start: start}
}

// typeAnnotation returns the type text of a type_annotation node without the colon.
func typeAnnotation(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	text := strings.TrimSpace(extractNodeText(node, source))
	text = strings.TrimPrefix(text, ":")
	return strings.TrimSpace(text)
}

// propertyKey returns an object key without quotes.
func propertyKey(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "string" {
		return unquote(extractNodeText(node, source))
	}
	return extractNodeText(node, source)
}

// unquote strips one pair of matching quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
