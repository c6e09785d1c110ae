package lsp

import (
	"strings"

	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (ls *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	tree, err := ls.tree(params.TextDocument.URI)
	if tree == nil {
		if err != nil {
			log.Debugf("no symbols for %s: %s", params.TextDocument.URI, err.Error())
		}
		return []protocol.DocumentSymbol{}, nil
	}
	return documentSymbols(tree, ls.options()), nil
}

// documentSymbols converts a tree into a symbol hierarchy. Top-level symbols
// follow the navigator's display order; classes and interfaces nest their
// properties then methods.
func documentSymbols(tree *outline.Tree, opts outline.Options) []protocol.DocumentSymbol {
	interfaces := make(map[*outline.ClassToken]bool, len(tree.Interfaces))
	for _, i := range tree.Interfaces {
		interfaces[i] = true
	}

	nav := outline.Navigator{}
	items := nav.Flatten(tree)
	symbols := make([]protocol.DocumentSymbol, 0, len(items))
	for _, item := range items {
		switch tok := nav.Item(item).(type) {
		case *outline.ClassToken:
			kind := protocol.SymbolKindClass
			if interfaces[tok] {
				kind = protocol.SymbolKindInterface
			}
			sym := symbol(tok.Name, kind, string(tok.Visibility), tok.Position)
			for _, p := range tok.Properties {
				sym.Children = append(sym.Children, propertySymbol(p))
			}
			for _, m := range tok.Methods {
				kind := protocol.SymbolKindMethod
				if m.Name == outline.ConstructorName {
					kind = protocol.SymbolKindConstructor
				}
				sym.Children = append(sym.Children, symbol(m.Name, kind, methodDetail(m), m.Position))
			}
			symbols = append(symbols, sym)
		case *outline.MethodToken:
			symbols = append(symbols, symbol(tok.Name, protocol.SymbolKindFunction, methodDetail(tok), tok.Position))
		case *outline.VariableToken:
			kind := protocol.SymbolKindVariable
			if opts.ReadonlyMarker != "" && strings.HasPrefix(tok.Name, opts.ReadonlyMarker) {
				kind = protocol.SymbolKindConstant
			}
			symbols = append(symbols, symbol(tok.Name, kind, tok.Type, tok.Position))
		case *outline.ImportToken:
			symbols = append(symbols, symbol(tok.Name, protocol.SymbolKindModule, tok.Alias, tok.Location()))
		}
	}
	return symbols
}

func propertySymbol(p *outline.PropertyToken) protocol.DocumentSymbol {
	kind := protocol.SymbolKindProperty
	if p.Static && p.Readonly {
		kind = protocol.SymbolKindConstant
	}
	detail := string(p.Visibility) + " " + p.Type
	if p.Value != "" {
		detail += " = " + p.Value
	}
	return symbol(p.Name, kind, detail, p.Position)
}

// methodDetail renders `(a: T, b: U): R`.
func methodDetail(m *outline.MethodToken) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, a := range m.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name + ": " + a.Type)
	}
	sb.WriteString(")")
	if m.ReturnType != "" {
		sb.WriteString(": " + m.ReturnType)
	}
	return sb.String()
}

func symbol(name string, kind protocol.SymbolKind, detail string, r *outline.Range) protocol.DocumentSymbol {
	rng := toRange(r)
	sym := protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
	}
	if detail != "" {
		sym.Detail = &detail
	}
	return sym
}

func toRange(r *outline.Range) protocol.Range {
	if r == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: toPosition(r.Start),
		End:   toPosition(r.End),
	}
}

func toPosition(p outline.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Character),
	}
}

func fromPosition(p protocol.Position) outline.Position {
	return outline.Position{Line: int(p.Line), Character: int(p.Character)}
}
