package outline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntityNotFound is returned by Skeleton when the source class or
// interface is not in the tree.
var ErrEntityNotFound = errors.New("entity not found")

// mixedType is the return type that emitted signatures leave unannotated.
const mixedType = "mixed"

// notImplemented is the statement every emitted method body consists of.
const notImplemented = `throw new Error("Not implemented");`

// TextEdit replaces Range with NewText. Emitted edits insert one line each.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// Emit generates a skeleton named entity from tok. With includeBodies the
// skeleton is a class whose methods throw; without it, an interface of
// method declarations. Only public constants and methods are emitted.
func Emit(entity string, tok *ClassToken, includeBodies bool, opts Options) []TextEdit {
	e := &emitter{}

	if includeBodies {
		e.line("export class " + entity + " {")
	} else {
		e.line("export interface " + entity + " {")
	}

	var constants []*PropertyToken
	var methods []*MethodToken
	if tok != nil {
		for _, p := range tok.Properties {
			if p.Visibility == Public && p.Static && p.Readonly {
				constants = append(constants, p)
			}
		}
		for _, m := range tok.Methods {
			if m.Visibility == Public {
				methods = append(methods, m)
			}
		}
	}

	for _, c := range constants {
		name := strings.TrimPrefix(c.Name, opts.ReadonlyMarker)
		e.line(opts.Indent + "public static readonly " + name + " = " + c.Value + ";")
	}
	if len(constants) > 0 && len(methods) > 0 {
		e.line("")
	}

	for i, m := range methods {
		sig := opts.Indent + signature(m, includeBodies)
		if !includeBodies {
			e.line(sig + ";")
			continue
		}
		e.line(sig + " {")
		e.line(opts.Indent + opts.Indent + notImplemented)
		e.line(opts.Indent + "}")
		if i < len(methods)-1 {
			e.line("")
		}
	}

	e.line("}")
	return e.edits
}

// Skeleton looks up source in tree and emits a stub named entity from it.
func Skeleton(tree *Tree, source, entity string, includeBodies bool, opts Options) ([]TextEdit, error) {
	tok, ok := FindEntity(tree, source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, source)
	}
	return Emit(entity, tok, includeBodies, opts), nil
}

// signature renders `name(args)[: Type]`, prefixed with `public [static ]`
// for class members.
func signature(m *MethodToken, member bool) string {
	var sb strings.Builder
	if member {
		sb.WriteString("public ")
		if m.Static {
			sb.WriteString("static ")
		}
	}
	sb.WriteString(m.Name)
	sb.WriteString("(")
	for i, a := range m.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name + ": " + a.Type)
		if a.Value != "" {
			sb.WriteString(" = " + a.Value)
		}
	}
	sb.WriteString(")")
	if m.ReturnType != "" && m.ReturnType != mixedType {
		sb.WriteString(": " + m.ReturnType)
	}
	return sb.String()
}

// Render joins emitted edits into file content.
func Render(edits []TextEdit) string {
	var sb strings.Builder
	for _, e := range edits {
		sb.WriteString(e.NewText)
	}
	return sb.String()
}

type emitter struct {
	edits []TextEdit
}

// line appends an edit inserting text as the next line.
func (e *emitter) line(text string) {
	at := Position{Line: len(e.edits)}
	e.edits = append(e.edits, TextEdit{
		Range:   Range{Start: at, End: at},
		NewText: text + "\n",
	})
}
