package outline

import (
	"strings"

	"github.com/mvp-joe/project-outline/internal/extraction"
)

// modifierScanWidth is how many space-separated words DetectModifiers inspects.
const modifierScanWidth = 5

// Modifiers are keyword modifiers found on a member declaration.
type Modifiers struct {
	Readonly bool
	Static   bool
}

// DetectModifiers scans the first five space-separated words of a member's
// source text for the readonly and static keywords. It is a textual
// heuristic: a keyword in an unrelated position, such as a parameter named
// static on a one-line signature, is reported as a modifier, and modifiers
// after a line break past the fifth word are missed.
func DetectModifiers(rawText string) Modifiers {
	words := strings.Split(rawText, " ")
	if len(words) > modifierScanWidth {
		words = words[:modifierScanWidth]
	}

	var m Modifiers
	for _, w := range words {
		switch w {
		case "readonly":
			m.Readonly = true
		case "static":
			m.Static = true
		}
	}
	return m
}

// resolveVisibility maps a parser visibility code to a canonical value,
// defaulting to public for missing or unknown codes.
func resolveVisibility(code *int) Visibility {
	if code == nil || *code < 0 || *code >= len(visibilityTable) {
		return Public
	}
	return visibilityTable[*code]
}

// typeOrAny returns t, or AnyType when t is empty.
func typeOrAny(t string) string {
	if t == "" {
		return AnyType
	}
	return t
}

// valueText normalizes a raw default value by its own literal type.
func valueText(v *extraction.Value) string {
	if v == nil {
		return ""
	}
	return Normalize(v, v.Type)
}

// builder converts raw members to tokens for one document.
type builder struct {
	doc  *Document
	opts Options
}

// memberText returns the source text of a member for modifier detection.
// Without an end offset the rest of the member's first line is used.
func (b *builder) memberText(n extraction.Node) string {
	if n.End > n.Start {
		return b.doc.Slice(n.Start, n.End)
	}
	pos := b.doc.PositionAt(n.Start)
	line := b.doc.LineText(pos.Line)
	return b.doc.Slice(n.Start, n.Start+len(line))
}

// modifiers prefers flags reported by the parser and falls back to the
// textual scan for the rest.
func (b *builder) modifiers(n extraction.Node, static, readonly *bool) Modifiers {
	var m Modifiers
	if static == nil || readonly == nil {
		m = DetectModifiers(b.memberText(n))
	}
	if static != nil {
		m.Static = *static
	}
	if readonly != nil {
		m.Readonly = *readonly
	}
	return m
}

// arguments builds argument tokens from raw parameters.
func (b *builder) arguments(params []extraction.Parameter) []*VariableToken {
	args := make([]*VariableToken, 0, len(params))
	for _, p := range params {
		args = append(args, &VariableToken{
			Name:       p.Name,
			Type:       typeOrAny(p.Type),
			Value:      valueText(p.Value),
			Visibility: Public,
		})
	}
	return args
}

// properties builds property tokens, prefixing read-only names with the marker.
func (b *builder) properties(props []extraction.Property) []*PropertyToken {
	tokens := make([]*PropertyToken, 0, len(props))
	for _, p := range props {
		mods := b.modifiers(p.Node, p.Static, p.Readonly)

		name := p.Name
		if mods.Readonly {
			name = b.opts.ReadonlyMarker + name
		}

		pos := b.doc.RangeForIdentifier(p.Name, p.Start)
		tokens = append(tokens, &PropertyToken{
			Name:       name,
			Type:       typeOrAny(p.Type),
			Value:      valueText(p.Value),
			Visibility: resolveVisibility(p.Visibility),
			Static:     mods.Static,
			Readonly:   mods.Readonly,
			Position:   &pos,
		})
	}
	return tokens
}

// method builds a single method token. Constructors get no return type.
func (b *builder) method(m extraction.Method) *MethodToken {
	mods := b.modifiers(m.Node, m.Static, extraction.Bool(false))

	returnType := typeOrAny(m.ReturnType)
	if m.Name == ConstructorName {
		returnType = ""
	}

	pos := b.doc.RangeForIdentifier(m.Name, m.Start)
	return &MethodToken{
		Name:       m.Name,
		ReturnType: returnType,
		Visibility: resolveVisibility(m.Visibility),
		Static:     mods.Static,
		Arguments:  b.arguments(m.Parameters),
		Position:   &pos,
	}
}

// methods builds method tokens in order.
func (b *builder) methods(methods []extraction.Method) []*MethodToken {
	tokens := make([]*MethodToken, 0, len(methods))
	for _, m := range methods {
		tokens = append(tokens, b.method(m))
	}
	return tokens
}
