package parsers

import (
	"context"
	"strings"

	"github.com/mvp-joe/project-outline/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// phpConstructor is the name PHP gives to class constructors.
const phpConstructor = "__construct"

// phpParser parses PHP files.
type phpParser struct {
	*treeSitterParser
}

// NewPhpParser creates a new PHP parser.
func NewPhpParser() *phpParser {
	lang := sitter.NewLanguage(php.LanguagePHP())
	return &phpParser{
		treeSitterParser: newTreeSitterParser(lang, "php"),
	}
}

// Extensions returns the file extensions this parser handles.
func (p *phpParser) Extensions() []string {
	return []string{".php", ".phtml"}
}

// Parse parses PHP source into a raw unit.
func (p *phpParser) Parse(ctx context.Context, source []byte) (*extraction.Unit, error) {
	return p.parse(ctx, source, func(root *sitter.Node, source []byte) *extraction.Unit {
		unit := &extraction.Unit{}
		p.extractStatements(root, source, unit)
		return unit
	})
}

// extractStatements walks a statement list. Braced namespace bodies are
// flattened into the enclosing unit.
func (p *phpParser) extractStatements(node *sitter.Node, source []byte, unit *extraction.Unit) {
	for _, child := range children(node) {
		switch child.Kind() {
		case "declare_statement":
			if isStrictTypes(child, source) {
				unit.Strict = true
			}
		case "namespace_definition":
			if body := child.ChildByFieldName("body"); body != nil {
				p.extractStatements(body, source, unit)
			}
		case "namespace_use_declaration":
			unit.Imports = append(unit.Imports, p.extractUse(child, source)...)
		case "class_declaration", "trait_declaration":
			if c := p.extractClass(child, source); c != nil {
				unit.Declarations = append(unit.Declarations, c)
			}
		case "interface_declaration":
			if i := p.extractInterface(child, source); i != nil {
				unit.Declarations = append(unit.Declarations, i)
			}
		case "function_definition":
			if f := p.extractFunction(child, source); f != nil {
				unit.Declarations = append(unit.Declarations, f)
			}
		case "const_declaration":
			for _, v := range p.extractConstants(child, source) {
				unit.Declarations = append(unit.Declarations, v)
			}
		case "expression_statement":
			if v := p.extractAssignment(child, source); v != nil {
				unit.Declarations = append(unit.Declarations, v)
			}
		case "compound_statement":
			p.extractStatements(child, source, unit)
		}
	}
}

// isStrictTypes reports whether a declare statement enables strict_types.
func isStrictTypes(node *sitter.Node, source []byte) bool {
	text := strings.Join(strings.Fields(extractNodeText(node, source)), "")
	return strings.Contains(text, "strict_types=1")
}

// extractClass extracts a class or trait declaration with its members.
func (p *phpParser) extractClass(node *sitter.Node, source []byte) *extraction.Class {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	class := &extraction.Class{
		Node:     undecoratedSpan(node, extractNodeText(nameNode, source)),
		Exported: true,
	}

	for _, member := range children(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_declaration":
			m, ok := p.extractMethod(member, source)
			if !ok {
				continue
			}
			if strings.EqualFold(m.Name, phpConstructor) {
				if class.Constructor == nil {
					class.Constructor = &m
				}
				continue
			}
			class.Methods = append(class.Methods, m)
		case "property_declaration":
			class.Properties = append(class.Properties, p.extractProperties(member, source)...)
		case "const_declaration":
			class.Properties = append(class.Properties, p.extractClassConstants(member, source)...)
		}
	}

	return class
}

// extractInterface extracts an interface declaration with its members.
func (p *phpParser) extractInterface(node *sitter.Node, source []byte) *extraction.Interface {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	iface := &extraction.Interface{
		Node:     nodeSpan(node, extractNodeText(nameNode, source)),
		Exported: true,
	}

	for _, member := range children(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_declaration":
			if m, ok := p.extractMethod(member, source); ok {
				iface.Methods = append(iface.Methods, m)
			}
		case "const_declaration":
			iface.Properties = append(iface.Properties, p.extractClassConstants(member, source)...)
		}
	}

	return iface
}

// extractMethod extracts a method declaration.
func (p *phpParser) extractMethod(node *sitter.Node, source []byte) (extraction.Method, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return extraction.Method{}, false
	}

	m := extraction.Method{
		Node:       undecoratedSpan(node, extractNodeText(nameNode, source)),
		Visibility: phpVisibility(node, source),
		Static:     extraction.Bool(hasChildOfType(node, "static_modifier")),
		ReturnType: typeAnnotation(node.ChildByFieldName("return_type"), source),
		Parameters: p.extractParameters(node.ChildByFieldName("parameters"), source),
	}
	return m, true
}

// extractProperties extracts each element of a property declaration.
func (p *phpParser) extractProperties(node *sitter.Node, source []byte) []extraction.Property {
	visibility := phpVisibility(node, source)
	static := hasChildOfType(node, "static_modifier")
	readonly := hasChildOfType(node, "readonly_modifier")
	typ := extractNodeText(node.ChildByFieldName("type"), source)

	var props []extraction.Property
	for _, elem := range findChildrenByType(node, "property_element") {
		nameNode := findChildByType(elem, "variable_name")
		if nameNode == nil {
			continue
		}
		props = append(props, extraction.Property{
			Node:       nodeSpan(elem, variableName(nameNode, source)),
			Visibility: visibility,
			Static:     extraction.Bool(static),
			Readonly:   extraction.Bool(readonly),
			Type:       typ,
			Value:      p.extractValue(propertyDefault(elem), source),
		})
	}
	return props
}

// propertyDefault returns the initializer of a property element across
// grammar revisions.
func propertyDefault(elem *sitter.Node) *sitter.Node {
	if v := elem.ChildByFieldName("default_value"); v != nil {
		return v
	}
	if init := findChildByType(elem, "property_initializer"); init != nil && init.NamedChildCount() > 0 {
		return init.NamedChild(0)
	}
	return nil
}

// extractClassConstants maps class constants to static read-only properties.
func (p *phpParser) extractClassConstants(node *sitter.Node, source []byte) []extraction.Property {
	visibility := phpVisibility(node, source)

	var props []extraction.Property
	for _, elem := range findChildrenByType(node, "const_element") {
		name, value := constElement(elem, source)
		if name == "" {
			continue
		}
		props = append(props, extraction.Property{
			Node:       nodeSpan(elem, name),
			Visibility: visibility,
			Static:     extraction.Bool(true),
			Readonly:   extraction.Bool(true),
			Value:      p.extractValue(value, source),
		})
	}
	return props
}

// extractConstants extracts top-level const declarations.
func (p *phpParser) extractConstants(node *sitter.Node, source []byte) []*extraction.Variable {
	var vars []*extraction.Variable
	for _, elem := range findChildrenByType(node, "const_element") {
		name, value := constElement(elem, source)
		if name == "" {
			continue
		}
		vars = append(vars, &extraction.Variable{
			Node:     nodeSpan(elem, name),
			Exported: true,
			Const:    true,
			Value:    p.extractValue(value, source),
		})
	}
	return vars
}

// constElement returns the name and value expression of a const element.
func constElement(elem *sitter.Node, source []byte) (string, *sitter.Node) {
	nameNode := findChildByType(elem, "name")
	if nameNode == nil {
		return "", nil
	}
	value := elem.ChildByFieldName("value")
	if value == nil {
		count := elem.NamedChildCount()
		if count > 1 {
			value = elem.NamedChild(count - 1)
		}
	}
	return extractNodeText(nameNode, source), value
}

// extractAssignment extracts a top-level `$name = value;` statement.
func (p *phpParser) extractAssignment(node *sitter.Node, source []byte) *extraction.Variable {
	assign := findChildByType(node, "assignment_expression")
	if assign == nil {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "variable_name" {
		return nil
	}

	return &extraction.Variable{
		Node:     nodeSpan(node, variableName(left, source)),
		Exported: true,
		Value:    p.extractValue(assign.ChildByFieldName("right"), source),
	}
}

// extractFunction extracts a top-level function definition.
func (p *phpParser) extractFunction(node *sitter.Node, source []byte) *extraction.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	return &extraction.Function{
		Node:       undecoratedSpan(node, extractNodeText(nameNode, source)),
		Exported:   true,
		ReturnType: typeAnnotation(node.ChildByFieldName("return_type"), source),
		Parameters: p.extractParameters(node.ChildByFieldName("parameters"), source),
	}
}

// extractParameters extracts formal parameters including promoted
// constructor properties.
func (p *phpParser) extractParameters(node *sitter.Node, source []byte) []extraction.Parameter {
	var params []extraction.Parameter
	for _, child := range children(node) {
		switch child.Kind() {
		case "simple_parameter", "property_promotion_parameter", "variadic_parameter":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = findChildByType(child, "variable_name")
			}
			if nameNode == nil {
				continue
			}
			name := variableName(nameNode, source)
			if child.Kind() == "variadic_parameter" {
				name = "..." + name
			}
			params = append(params, extraction.Parameter{
				Name:  name,
				Type:  extractNodeText(child.ChildByFieldName("type"), source),
				Value: p.extractValue(child.ChildByFieldName("default_value"), source),
			})
		}
	}
	return params
}

// extractValue converts an initializer expression into a raw literal.
func (p *phpParser) extractValue(node *sitter.Node, source []byte) *extraction.Value {
	if node == nil {
		return nil
	}

	text := extractNodeText(node, source)
	switch node.Kind() {
	case "string", "encapsed_string":
		return &extraction.Value{Type: "string", Raw: unquote(text)}
	case "integer", "float":
		return &extraction.Value{Type: "number", Raw: text}
	case "boolean":
		return &extraction.Value{Type: "boolean", Raw: strings.ToLower(text)}
	case "null":
		return &extraction.Value{Type: "null", Raw: strings.ToLower(text)}
	case "array_creation_expression":
		v := &extraction.Value{Type: "array", Raw: text}
		for _, elem := range findChildrenByType(node, "array_element_initializer") {
			switch elem.NamedChildCount() {
			case 1:
				v.Entries = append(v.Entries, extraction.Entry{Value: p.extractValue(elem.NamedChild(0), source)})
			case 2:
				key := elem.NamedChild(0)
				keyText := extractNodeText(key, source)
				if key.Kind() == "string" || key.Kind() == "encapsed_string" {
					keyText = unquote(keyText)
				}
				v.Entries = append(v.Entries, extraction.Entry{
					Keyed: true,
					Key:   keyText,
					Value: p.extractValue(elem.NamedChild(1), source),
				})
			}
		}
		return v
	}

	return &extraction.Value{Raw: text}
}

// extractUse converts a use declaration. Grouped uses become one named
// import; every plain clause becomes a namespace import.
func (p *phpParser) extractUse(node *sitter.Node, source []byte) []extraction.Import {
	start := int(node.StartByte())

	if group := findChildByType(node, "namespace_use_group"); group != nil {
		prefix := findChildByType(node, "namespace_name")
		imp := &extraction.NamedImport{
			Module: strings.TrimPrefix(extractNodeText(prefix, source), `\`),
			Start:  start,
		}
		for _, clause := range children(group) {
			switch clause.Kind() {
			case "namespace_use_clause", "namespace_use_group_clause":
				name, alias := useClause(clause, source)
				if name == "" {
					continue
				}
				if alias != "" {
					name += " as " + alias
				}
				imp.Specifiers = append(imp.Specifiers, name)
			}
		}
		if len(imp.Specifiers) == 0 {
			return nil
		}
		return []extraction.Import{imp}
	}

	var imports []extraction.Import
	for _, clause := range findChildrenByType(node, "namespace_use_clause") {
		name, alias := useClause(clause, source)
		if name == "" {
			continue
		}
		if alias == "" {
			alias = name[strings.LastIndex(name, `\`)+1:]
		}
		imports = append(imports, &extraction.NamespaceImport{
			Module: name,
			Alias:  alias,
			Start:  start,
		})
	}
	return imports
}

// useClause returns the imported name and optional alias of a use clause.
func useClause(clause *sitter.Node, source []byte) (string, string) {
	var name, alias string
	if a := clause.ChildByFieldName("alias"); a != nil {
		alias = extractNodeText(a, source)
	} else if aliasing := findChildByType(clause, "namespace_aliasing_clause"); aliasing != nil {
		alias = extractNodeText(findChildByType(aliasing, "name"), source)
	}

	for _, child := range children(clause) {
		switch child.Kind() {
		case "qualified_name", "namespace_name":
			name = extractNodeText(child, source)
		case "name":
			if name == "" && extractNodeText(child, source) != alias {
				name = extractNodeText(child, source)
			}
		}
		if name != "" {
			break
		}
	}
	return strings.TrimPrefix(name, `\`), alias
}

// phpVisibility returns the visibility code of a declaration's modifier, if any.
func phpVisibility(node *sitter.Node, source []byte) *int {
	if mod := findChildByType(node, "visibility_modifier"); mod != nil {
		return visibilityCode(strings.ToLower(extractNodeText(mod, source)))
	}
	return nil
}

// variableName returns a variable_name node's text without the leading `$`.
func variableName(node *sitter.Node, source []byte) string {
	return strings.TrimPrefix(extractNodeText(node, source), "$")
}
