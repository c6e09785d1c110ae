package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/project-outline/internal/outline"
)

// renderTree writes a human-readable outline of tree. Lines are indented by
// nesting depth and positions are printed one-based.
func renderTree(w io.Writer, name string, tree *outline.Tree) {
	header := name
	if tree.Strict {
		header += " (strict)"
	}
	fmt.Fprintln(w, header)

	interfaces := make(map[*outline.ClassToken]bool, len(tree.Interfaces))
	for _, i := range tree.Interfaces {
		interfaces[i] = true
	}

	nav := outline.Navigator{}
	for _, item := range nav.Flatten(tree) {
		switch tok := nav.Item(item).(type) {
		case *outline.ClassToken:
			kind := "class"
			if interfaces[tok] {
				kind = "interface"
			}
			fmt.Fprintf(w, "  %s %s [%s]%s\n", kind, tok.Name, tok.Visibility, at(tok.Position))
			for _, p := range tok.Properties {
				fmt.Fprintf(w, "    property %s: %s%s [%s]%s\n", p.Name, p.Type, valueSuffix(p.Value), propertyFlags(p), at(p.Position))
			}
			for _, m := range tok.Methods {
				fmt.Fprintf(w, "    method %s%s [%s]%s\n", m.Name, methodSignature(m), methodFlags(m), at(m.Position))
			}
		case *outline.MethodToken:
			fmt.Fprintf(w, "  function %s%s%s\n", tok.Name, methodSignature(tok), at(tok.Position))
		case *outline.VariableToken:
			fmt.Fprintf(w, "  variable %s: %s%s [%s]%s\n", tok.Name, tok.Type, valueSuffix(tok.Value), tok.Visibility, at(tok.Position))
		case *outline.ImportToken:
			line := "  import " + tok.Name
			if tok.Alias != "" {
				line += " as " + tok.Alias
			}
			fmt.Fprintf(w, "%s%s\n", line, at(tok.Location()))
		}
	}
}

func methodSignature(m *outline.MethodToken) string {
	args := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		args[i] = a.Name + ": " + a.Type + valueSuffix(a.Value)
	}
	sig := "(" + strings.Join(args, ", ") + ")"
	if m.ReturnType != "" {
		sig += ": " + m.ReturnType
	}
	return sig
}

func methodFlags(m *outline.MethodToken) string {
	if m.Static {
		return string(m.Visibility) + " static"
	}
	return string(m.Visibility)
}

func propertyFlags(p *outline.PropertyToken) string {
	flags := []string{string(p.Visibility)}
	if p.Static {
		flags = append(flags, "static")
	}
	if p.Readonly {
		flags = append(flags, "readonly")
	}
	return strings.Join(flags, " ")
}

func valueSuffix(v string) string {
	if v == "" {
		return ""
	}
	return " = " + v
}

func at(r *outline.Range) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(" @%d:%d", r.Start.Line+1, r.Start.Character+1)
}
