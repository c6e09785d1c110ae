package outline

// Test Plan for Build:
// - nil unit yields an empty, non-strict tree with all sequences absent
// - strict flag is carried over
// - class constructor is renamed, has no return type and comes first
// - class visibility follows the export flag
// - interface tokens drop non-public properties
// - const variables get the read-only marker, others do not
// - functions are static methods with their own positions
// - named and namespace imports produce zero-width positions at the statement start
// - token counts match raw declaration counts
// - every visibility is canonical
// - FindEntity locates classes before interfaces

import (
	"strings"
	"testing"

	"github.com/mvp-joe/project-outline/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `import { a, b } from "lib";
import * as path from "path";
export class Service {
  constructor(repo) {}
  private cache = 1;
  find(id: string): User {}
}
interface Shape {
  area(): number;
}
const LIMIT = 10;
let counter = 0;
function helper(x = 1) {}
`

// offsetOf returns the byte offset of the first occurrence of needle.
func offsetOf(t *testing.T, src, needle string) int {
	t.Helper()
	i := strings.Index(src, needle)
	require.GreaterOrEqual(t, i, 0, "needle %q not found", needle)
	return i
}

func sampleUnit(t *testing.T) *extraction.Unit {
	t.Helper()
	src := sampleSource
	return &extraction.Unit{
		Strict: true,
		Imports: []extraction.Import{
			&extraction.NamedImport{Module: "lib", Specifiers: []string{"a", "b"}, Start: 0},
			&extraction.NamespaceImport{Module: "path", Alias: "path", Start: offsetOf(t, src, "import * as")},
		},
		Declarations: []extraction.Declaration{
			&extraction.Class{
				Node:     extraction.Node{Name: "Service", Start: offsetOf(t, src, "export class")},
				Exported: true,
				Constructor: &extraction.Method{
					Node:       extraction.Node{Name: "constructor", Start: offsetOf(t, src, "constructor")},
					Parameters: []extraction.Parameter{{Name: "repo"}},
				},
				Methods: []extraction.Method{{
					Node:       extraction.Node{Name: "find", Start: offsetOf(t, src, "find(")},
					ReturnType: "User",
					Static:     extraction.Bool(false),
					Parameters: []extraction.Parameter{{Name: "id", Type: "string"}},
				}},
				Properties: []extraction.Property{{
					Node:       extraction.Node{Name: "cache", Start: offsetOf(t, src, "private cache")},
					Visibility: extraction.Int(0),
					Value:      num("1"),
				}},
			},
			&extraction.Interface{
				Node: extraction.Node{Name: "Shape", Start: offsetOf(t, src, "interface Shape")},
				Methods: []extraction.Method{{
					Node:       extraction.Node{Name: "area", Start: offsetOf(t, src, "area(")},
					ReturnType: "number",
				}},
			},
			&extraction.Variable{
				Node:  extraction.Node{Name: "LIMIT", Start: offsetOf(t, src, "const LIMIT")},
				Const: true,
				Value: num("10"),
			},
			&extraction.Variable{
				Node:  extraction.Node{Name: "counter", Start: offsetOf(t, src, "let counter")},
				Value: num("0"),
			},
			&extraction.Function{
				Node:       extraction.Node{Name: "helper", Start: offsetOf(t, src, "function helper")},
				Parameters: []extraction.Parameter{{Name: "x", Value: num("1")}},
			},
		},
	}
}

func TestBuild_NilUnit(t *testing.T) {
	t.Parallel()

	tree := Build(nil, NewDocument(""), DefaultOptions())
	require.NotNil(t, tree)
	assert.False(t, tree.Strict)
	assert.Nil(t, tree.Classes)
	assert.Nil(t, tree.Interfaces)
	assert.Nil(t, tree.Functions)
	assert.Nil(t, tree.Variables)
	assert.Nil(t, tree.Imports)
}

func TestBuild_SequencesStayAbsentUntilUsed(t *testing.T) {
	t.Parallel()

	unit := &extraction.Unit{Declarations: []extraction.Declaration{
		&extraction.Function{Node: extraction.Node{Name: "f"}},
	}}
	tree := Build(unit, NewDocument("function f() {}"), DefaultOptions())
	assert.Len(t, tree.Functions, 1)
	assert.Nil(t, tree.Classes)
	assert.Nil(t, tree.Interfaces)
	assert.Nil(t, tree.Variables)
	assert.Nil(t, tree.Imports)
}

func TestBuild_Class(t *testing.T) {
	t.Parallel()

	tree := Build(sampleUnit(t), NewDocument(sampleSource), DefaultOptions())
	assert.True(t, tree.Strict)

	require.Len(t, tree.Classes, 1)
	class := tree.Classes[0]
	assert.Equal(t, "Service", class.Name)
	assert.Equal(t, Public, class.Visibility)

	require.Len(t, class.Methods, 2)
	ctor := class.Methods[0]
	assert.Equal(t, ConstructorName, ctor.Name)
	assert.Equal(t, "", ctor.ReturnType)
	require.Len(t, ctor.Arguments, 1)
	assert.Equal(t, "repo", ctor.Arguments[0].Name)

	find := class.Methods[1]
	assert.Equal(t, "find", find.Name)
	assert.Equal(t, "User", find.ReturnType)
	assert.False(t, find.Static)
	require.NotNil(t, find.Position)
	assert.Equal(t, Range{Start: Position{5, 2}, End: Position{5, 6}}, *find.Position)

	require.Len(t, class.Properties, 1)
	assert.Equal(t, "cache", class.Properties[0].Name)
	assert.Equal(t, Private, class.Properties[0].Visibility)
	assert.Equal(t, "1", class.Properties[0].Value)
}

func TestBuild_ConstructorRenamed(t *testing.T) {
	t.Parallel()

	src := "class A {\n  __construct($x) {}\n  run() {}\n}\n"
	unit := &extraction.Unit{Declarations: []extraction.Declaration{
		&extraction.Class{
			Node:        extraction.Node{Name: "A"},
			Constructor: &extraction.Method{Node: extraction.Node{Name: "__construct", Start: offsetOf(t, src, "__construct")}, ReturnType: "void"},
			Methods:     []extraction.Method{{Node: extraction.Node{Name: "run", Start: offsetOf(t, src, "run")}}},
		},
	}}

	tree := Build(unit, NewDocument(src), DefaultOptions())
	require.Len(t, tree.Classes, 1)
	class := tree.Classes[0]
	assert.Equal(t, Protected, class.Visibility)
	require.Len(t, class.Methods, 2)
	assert.Equal(t, ConstructorName, class.Methods[0].Name)
	assert.Equal(t, "", class.Methods[0].ReturnType)
	assert.Equal(t, Range{Start: Position{1, 2}, End: Position{1, 13}}, *class.Methods[0].Position)
	assert.Equal(t, "run", class.Methods[1].Name)
}

func TestBuild_InterfaceDropsNonPublicProperties(t *testing.T) {
	t.Parallel()

	unit := &extraction.Unit{Declarations: []extraction.Declaration{
		&extraction.Interface{
			Node:     extraction.Node{Name: "Config"},
			Exported: true,
			Properties: []extraction.Property{
				{Node: extraction.Node{Name: "host"}, Static: extraction.Bool(false), Readonly: extraction.Bool(false)},
				{Node: extraction.Node{Name: "secret"}, Visibility: extraction.Int(0), Static: extraction.Bool(false), Readonly: extraction.Bool(false)},
				{Node: extraction.Node{Name: "port"}, Visibility: extraction.Int(1), Static: extraction.Bool(false), Readonly: extraction.Bool(false)},
				{Node: extraction.Node{Name: "id"}, Visibility: extraction.Int(2), Static: extraction.Bool(false), Readonly: extraction.Bool(true)},
			},
		},
	}}

	tree := Build(unit, NewDocument("interface Config {}"), DefaultOptions())
	require.Len(t, tree.Interfaces, 1)
	iface := tree.Interfaces[0]
	assert.Equal(t, Public, iface.Visibility)

	var names []string
	for _, p := range iface.Properties {
		assert.Equal(t, Public, p.Visibility)
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"host", "@id"}, names)
}

func TestBuild_VariablesAndFunctions(t *testing.T) {
	t.Parallel()

	tree := Build(sampleUnit(t), NewDocument(sampleSource), Options{ReadonlyMarker: "$"})

	require.Len(t, tree.Variables, 2)
	assert.Equal(t, "$LIMIT", tree.Variables[0].Name)
	assert.Equal(t, AnyType, tree.Variables[0].Type)
	assert.Equal(t, "10", tree.Variables[0].Value)
	require.NotNil(t, tree.Variables[0].Position)
	assert.Equal(t, Range{Start: Position{10, 6}, End: Position{10, 11}}, *tree.Variables[0].Position)
	assert.Equal(t, "counter", tree.Variables[1].Name)

	require.Len(t, tree.Functions, 1)
	fn := tree.Functions[0]
	assert.Equal(t, "helper", fn.Name)
	assert.True(t, fn.Static)
	assert.Equal(t, AnyType, fn.ReturnType)
	require.Len(t, fn.Arguments, 1)
	assert.Equal(t, "1", fn.Arguments[0].Value)
	require.NotNil(t, fn.Position)
	assert.Equal(t, 12, fn.Position.Start.Line)
}

func TestBuild_Imports(t *testing.T) {
	t.Parallel()

	tree := Build(sampleUnit(t), NewDocument(sampleSource), DefaultOptions())

	require.Len(t, tree.Imports, 2)
	named := tree.Imports[0]
	assert.Equal(t, "lib: a, b", named.Name)
	assert.Empty(t, named.Alias)
	assert.Equal(t, "lib", named.Module)
	assert.True(t, named.Position.Empty())
	assert.Equal(t, Position{0, 0}, named.Position.Start)

	ns := tree.Imports[1]
	assert.Equal(t, "path", ns.Name)
	assert.Equal(t, "path", ns.Alias)
	assert.True(t, ns.Position.Empty())
	assert.Equal(t, Position{1, 0}, ns.Position.Start)
}

func TestBuild_CountsAndVisibilities(t *testing.T) {
	t.Parallel()

	unit := sampleUnit(t)
	tree := Build(unit, NewDocument(sampleSource), DefaultOptions())

	var classes, interfaces, variables, functions int
	for _, d := range unit.Declarations {
		switch d.(type) {
		case *extraction.Class:
			classes++
		case *extraction.Interface:
			interfaces++
		case *extraction.Variable:
			variables++
		case *extraction.Function:
			functions++
		}
	}
	assert.Len(t, tree.Classes, classes)
	assert.Len(t, tree.Interfaces, interfaces)
	assert.Len(t, tree.Variables, variables)
	assert.Len(t, tree.Functions, functions)
	assert.Len(t, tree.Imports, len(unit.Imports))

	canonical := map[Visibility]bool{Private: true, Protected: true, Public: true}
	for _, c := range append(tree.Classes, tree.Interfaces...) {
		assert.True(t, canonical[c.Visibility])
		for _, m := range c.Methods {
			assert.True(t, canonical[m.Visibility])
			for _, a := range m.Arguments {
				assert.True(t, canonical[a.Visibility])
			}
		}
		for _, p := range c.Properties {
			assert.True(t, canonical[p.Visibility])
		}
	}
	for _, v := range tree.Variables {
		assert.True(t, canonical[v.Visibility])
	}
	for _, f := range tree.Functions {
		assert.True(t, canonical[f.Visibility])
	}
}

func TestFindEntity(t *testing.T) {
	t.Parallel()

	tree := Build(sampleUnit(t), NewDocument(sampleSource), DefaultOptions())

	class, ok := FindEntity(tree, "Service")
	require.True(t, ok)
	assert.Equal(t, "Service", class.Name)

	iface, ok := FindEntity(tree, "Shape")
	require.True(t, ok)
	assert.Len(t, iface.Methods, 1)

	_, ok = FindEntity(tree, "Missing")
	assert.False(t, ok)

	_, ok = FindEntity(nil, "Service")
	assert.False(t, ok)
}
