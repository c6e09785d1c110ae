// Package outline turns raw parse results into a normalized token tree and
// generates skeleton declarations from it.
//
// The pipeline is: source text -> Parser -> extraction.Unit -> Build -> Tree.
// A Tree can be displayed through Navigator or fed to Emit to produce the
// text of an interface or class stub.
package outline

// Visibility is one of the three canonical member visibilities.
type Visibility string

const (
	Private   Visibility = "private"
	Protected Visibility = "protected"
	Public    Visibility = "public"
)

// visibilityTable maps parser visibility codes to canonical values.
var visibilityTable = [...]Visibility{Private, Protected, Public}

// AnyType is the type recorded when a declaration carries no annotation.
const AnyType = "any"

// ConstructorName is the name every constructor token is given.
const ConstructorName = "constructor"

// Position is a zero-based line/column location. Character counts runes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans [Start, End) in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Empty reports whether the range is zero-width.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Tree is the outline of one source unit. Sequences stay nil until their
// first member is appended.
type Tree struct {
	Strict     bool             `json:"strict"`
	Classes    []*ClassToken    `json:"classes,omitempty"`
	Interfaces []*ClassToken    `json:"interfaces,omitempty"`
	Functions  []*MethodToken   `json:"functions,omitempty"`
	Variables  []*VariableToken `json:"variables,omitempty"`
	Imports    []*ImportToken   `json:"imports,omitempty"`
}

// Token is implemented by every record in a Tree.
type Token interface {
	Label() string
	Location() *Range
}

// ClassToken describes a class or an interface.
type ClassToken struct {
	Name       string           `json:"name"`
	Visibility Visibility       `json:"visibility"`
	Methods    []*MethodToken   `json:"methods"`
	Properties []*PropertyToken `json:"properties"`
	Position   *Range           `json:"position,omitempty"`
}

// MethodToken describes a method or a top-level function. ReturnType is
// empty for constructors.
type MethodToken struct {
	Name       string           `json:"name"`
	ReturnType string           `json:"returnType,omitempty"`
	Visibility Visibility       `json:"visibility"`
	Static     bool             `json:"static"`
	Arguments  []*VariableToken `json:"arguments"`
	Position   *Range           `json:"position,omitempty"`
}

// PropertyToken describes a class or interface property.
type PropertyToken struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Value      string     `json:"value"`
	Visibility Visibility `json:"visibility"`
	Static     bool       `json:"static"`
	Readonly   bool       `json:"readonly"`
	Position   *Range     `json:"position,omitempty"`
}

// VariableToken describes a top-level variable or a method argument.
// Arguments have no position.
type VariableToken struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Value      string     `json:"value"`
	Visibility Visibility `json:"visibility"`
	Position   *Range     `json:"position,omitempty"`
}

// ImportToken describes a named or namespace import.
type ImportToken struct {
	Name     string `json:"name"`
	Alias    string `json:"alias,omitempty"`
	Module   string `json:"module"`
	Position Range  `json:"position"`
}

func (t *ClassToken) Label() string    { return t.Name }
func (t *MethodToken) Label() string   { return t.Name }
func (t *PropertyToken) Label() string { return t.Name }
func (t *VariableToken) Label() string { return t.Name }
func (t *ImportToken) Label() string   { return t.Name }

func (t *ClassToken) Location() *Range    { return t.Position }
func (t *MethodToken) Location() *Range   { return t.Position }
func (t *PropertyToken) Location() *Range { return t.Position }
func (t *VariableToken) Location() *Range { return t.Position }
func (t *ImportToken) Location() *Range   { return &t.Position }

// Options are read by the tree builder and the skeleton emitter on every call.
type Options struct {
	// ReadonlyMarker prefixes the names of read-only properties and constants.
	ReadonlyMarker string
	// Indent is used for member lines in emitted skeletons.
	Indent string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		ReadonlyMarker: "@",
		Indent:         "    ",
	}
}
