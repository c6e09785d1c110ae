package outline

import (
	"strings"

	"github.com/mvp-joe/project-outline/internal/extraction"
)

// Build assembles the outline of a parsed unit. doc must hold the text the
// unit was parsed from. Declarations and imports keep their source order;
// unknown declaration kinds are skipped.
func Build(unit *extraction.Unit, doc *Document, opts Options) *Tree {
	tree := &Tree{}
	if unit == nil {
		return tree
	}
	tree.Strict = unit.Strict

	b := &builder{doc: doc, opts: opts}

	for _, decl := range unit.Declarations {
		switch d := decl.(type) {
		case *extraction.Class:
			tree.Classes = append(tree.Classes, b.class(d))
		case *extraction.Interface:
			tree.Interfaces = append(tree.Interfaces, b.iface(d))
		case *extraction.Variable:
			tree.Variables = append(tree.Variables, b.variable(d))
		case *extraction.Function:
			tree.Functions = append(tree.Functions, b.function(d))
		}
	}

	for _, imp := range unit.Imports {
		switch i := imp.(type) {
		case *extraction.NamedImport:
			tree.Imports = append(tree.Imports, &ImportToken{
				Name:     i.Module + ": " + strings.Join(i.Specifiers, ", "),
				Module:   i.Module,
				Position: doc.ZeroRange(i.Start),
			})
		case *extraction.NamespaceImport:
			tree.Imports = append(tree.Imports, &ImportToken{
				Name:     i.Module,
				Alias:    i.Alias,
				Module:   i.Module,
				Position: doc.ZeroRange(i.Start),
			})
		}
	}

	return tree
}

func exportedVisibility(exported bool) Visibility {
	if exported {
		return Public
	}
	return Protected
}

func (b *builder) class(c *extraction.Class) *ClassToken {
	methods := b.methods(c.Methods)
	if c.Constructor != nil {
		ctor := b.method(*c.Constructor)
		ctor.Name = ConstructorName
		ctor.ReturnType = ""
		methods = append([]*MethodToken{ctor}, methods...)
	}

	pos := b.doc.RangeForIdentifier(c.Name, c.Start)
	return &ClassToken{
		Name:       c.Name,
		Visibility: exportedVisibility(c.Exported),
		Methods:    methods,
		Properties: b.properties(c.Properties),
		Position:   &pos,
	}
}

func (b *builder) iface(i *extraction.Interface) *ClassToken {
	props := b.properties(i.Properties)
	public := props[:0]
	for _, p := range props {
		if p.Visibility == Public {
			public = append(public, p)
		}
	}

	pos := b.doc.RangeForIdentifier(i.Name, i.Start)
	return &ClassToken{
		Name:       i.Name,
		Visibility: exportedVisibility(i.Exported),
		Methods:    b.methods(i.Methods),
		Properties: public,
		Position:   &pos,
	}
}

func (b *builder) variable(v *extraction.Variable) *VariableToken {
	name := v.Name
	if v.Const {
		name = b.opts.ReadonlyMarker + name
	}

	pos := b.doc.RangeForIdentifier(v.Name, v.Start)
	return &VariableToken{
		Name:       name,
		Type:       typeOrAny(v.Type),
		Value:      valueText(v.Value),
		Visibility: Public,
		Position:   &pos,
	}
}

// function models a top-level function as a static method.
func (b *builder) function(f *extraction.Function) *MethodToken {
	pos := b.doc.RangeForIdentifier(f.Name, f.Start)
	return &MethodToken{
		Name:       f.Name,
		ReturnType: typeOrAny(f.ReturnType),
		Visibility: Public,
		Static:     true,
		Arguments:  b.arguments(f.Parameters),
		Position:   &pos,
	}
}

// FindEntity returns the class or interface named name. Classes are searched
// before interfaces.
func FindEntity(tree *Tree, name string) (*ClassToken, bool) {
	if tree == nil {
		return nil, false
	}
	for _, c := range tree.Classes {
		if c.Name == name {
			return c, true
		}
	}
	for _, i := range tree.Interfaces {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}
