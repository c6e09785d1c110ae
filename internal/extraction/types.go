// Package extraction holds the raw parse model produced by language parsers.
//
// A Unit is what a parser hands back for one source file: the ordered
// top-level declarations and imports, each carrying byte offsets into the
// source text. Nothing here is normalized; the outline package turns a Unit
// into a token tree.
package extraction

// Unit represents one parsed source file.
type Unit struct {
	Strict       bool          // "use strict" / declare(strict_types=1)
	Declarations []Declaration // in source order
	Imports      []Import      // in source order
}

// Node carries the fields shared by every raw declaration.
type Node struct {
	Name  string
	Start int // byte offset of the declaration
	End   int // byte offset one past the declaration, 0 when unknown
}

// Declaration is one of *Class, *Interface, *Variable or *Function.
type Declaration interface {
	declaration()
}

// Class represents a class declaration.
type Class struct {
	Node
	Exported    bool
	Constructor *Method // nil when the class declares none
	Methods     []Method
	Properties  []Property
}

// Interface represents an interface declaration.
type Interface struct {
	Node
	Exported   bool
	Methods    []Method
	Properties []Property
}

// Variable represents a top-level variable or constant.
type Variable struct {
	Node
	Exported bool
	Const    bool
	Type     string // type annotation, empty when absent
	Value    *Value
}

// Function represents a top-level function declaration.
type Function struct {
	Node
	Exported   bool
	ReturnType string
	Parameters []Parameter
}

func (*Class) declaration()     {}
func (*Interface) declaration() {}
func (*Variable) declaration()  {}
func (*Function) declaration()  {}

// Method represents a class or interface method.
type Method struct {
	Node
	Visibility *int  // index into the visibility table, nil when unspecified
	Static     *bool // nil when the parser does not report the modifier
	ReturnType string
	Parameters []Parameter
}

// Property represents a class field, class constant or interface property.
type Property struct {
	Node
	Visibility *int
	Static     *bool
	Readonly   *bool
	Type       string
	Value      *Value
}

// Parameter represents a formal parameter.
type Parameter struct {
	Name  string
	Type  string
	Value *Value // default value, nil when absent
}

// Value is a literal as the parser saw it.
type Value struct {
	Type    string  // "string", "array", "number", "boolean", "null" or "" for other expressions
	Raw     string  // string content without quotes, or verbatim source
	Entries []Entry // members of an array literal
}

// Entry is one member of an array literal. Positional entries have Keyed false.
type Entry struct {
	Keyed bool
	Key   string
	Value *Value
}

// Import is one of *NamedImport or *NamespaceImport.
type Import interface {
	importStatement()
	Offset() int
}

// NamedImport represents `import { a, b } from "module"`.
type NamedImport struct {
	Module     string
	Specifiers []string
	Start      int
}

// NamespaceImport represents `import * as alias from "module"`.
type NamespaceImport struct {
	Module string
	Alias  string
	Start  int
}

func (*NamedImport) importStatement()     {}
func (*NamespaceImport) importStatement() {}

// Offset returns the byte offset of the import statement.
func (i *NamedImport) Offset() int { return i.Start }

// Offset returns the byte offset of the import statement.
func (i *NamespaceImport) Offset() int { return i.Start }

// Bool returns a pointer to b, for populating optional modifier flags.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n, for populating optional visibility codes.
func Int(n int) *int {
	return &n
}
