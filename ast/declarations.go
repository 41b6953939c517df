package ast

import (
	"strings"

	"github.com/bloch-labs/bloch-go/errs"
)

// Visibility is a class member access level.
type Visibility int

const (
	Private Visibility = iota
	Protected
	Public
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return "private"
	}
}

// Param is a function/method/constructor parameter.
type Param struct {
	Position errs.Position
	Name     string
	Type     Type
}

// FunctionDecl is a top-level function. Top-level functions and methods
// are distinct node kinds (methods are MethodDecl); FunctionDecl is used
// only for Program.Functions and for `main`.
type FunctionDecl struct {
	Position    errs.Position
	Name        string
	Params      []Param
	ReturnType  Type
	Body        *BlockStmt
	Quantum     bool
	ShotCount   int
	HasShots    bool
	Annotations []Annotation
}

func (d *FunctionDecl) stmtNode()          {}
func (d *FunctionDecl) Pos() errs.Position { return d.Position }
func (d *FunctionDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Type.TypeString() + " " + p.Name
	}
	return "function " + d.Name + "(" + strings.Join(parts, ", ") + ") -> " + d.ReturnType.TypeString() + " " + d.Body.String()
}

// TypeParam is a class generic type parameter with an optional bound.
type TypeParam struct {
	Name  string
	Bound *NamedType // nil if unbounded
}

// FieldDecl is a class field.
type FieldDecl struct {
	Position    errs.Position
	Name        string
	Type        Type
	Visibility  Visibility
	Final       bool
	Static      bool
	Tracked     bool
	Initializer Expression
}

func (d *FieldDecl) classMemberNode()  {}
func (d *FieldDecl) Pos() errs.Position { return d.Position }
func (d *FieldDecl) String() string {
	s := d.Visibility.String() + " "
	if d.Static {
		s += "static "
	}
	if d.Final {
		s += "final "
	}
	s += d.Type.TypeString() + " " + d.Name
	if d.Initializer != nil {
		s += " = " + d.Initializer.String()
	}
	return s + ";"
}

// MethodDecl is a class method.
type MethodDecl struct {
	Position   errs.Position
	Name       string
	Params     []Param
	ReturnType Type
	Body       *BlockStmt // nil for a virtual method without a body
	Visibility Visibility
	Static     bool
	Virtual    bool
	Override   bool
	Quantum    bool
}

func (d *MethodDecl) classMemberNode()  {}
func (d *MethodDecl) Pos() errs.Position { return d.Position }
func (d *MethodDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Type.TypeString() + " " + p.Name
	}
	sig := d.Visibility.String() + " function " + d.Name + "(" + strings.Join(parts, ", ") + ") -> " + d.ReturnType.TypeString()
	if d.Body == nil {
		return sig + ";"
	}
	return sig + " " + d.Body.String()
}

// Signature returns the name + parameter-type-tuple string used for
// duplicate detection and vtable keys (spec §3.2).
func (d *MethodDecl) Signature() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Type.TypeString()
	}
	return d.Name + "(" + strings.Join(parts, ",") + ")"
}

// ConstructorDecl is a class constructor. IsDefault is true for `= default;`.
type ConstructorDecl struct {
	Position   errs.Position
	Params     []Param
	Body       *BlockStmt
	Visibility Visibility
	IsDefault  bool
	// ReturnClassName is the class name the constructor's `-> Name`
	// clause names; the parser requires it and, in parseClassDecl,
	// verifies it matches the enclosing class (spec §4.1).
	ReturnClassName string
}

func (d *ConstructorDecl) classMemberNode()  {}
func (d *ConstructorDecl) Pos() errs.Position { return d.Position }
func (d *ConstructorDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Type.TypeString() + " " + p.Name
	}
	if d.IsDefault {
		return "constructor(" + strings.Join(parts, ", ") + ") = default;"
	}
	return "constructor(" + strings.Join(parts, ", ") + ") " + d.Body.String()
}

// ParamTypes returns the parameter type list, used for overload selection.
func (d *ConstructorDecl) ParamTypes() []Type {
	out := make([]Type, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Type
	}
	return out
}

// DestructorDecl is a class destructor. IsDefault is true for `= default;`.
type DestructorDecl struct {
	Position   errs.Position
	Body       *BlockStmt
	Visibility Visibility
	IsDefault  bool
}

func (d *DestructorDecl) classMemberNode()  {}
func (d *DestructorDecl) Pos() errs.Position { return d.Position }
func (d *DestructorDecl) String() string {
	if d.IsDefault {
		return "destructor() = default;"
	}
	return "destructor() " + d.Body.String()
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	Position     errs.Position
	Name         string
	TypeParams   []TypeParam
	Base         *Identifier // nil means implicit Object
	Static       bool
	Abstract     bool
	Fields       []*FieldDecl
	Methods      []*MethodDecl
	Constructors []*ConstructorDecl
	Destructor   *DestructorDecl
}

func (d *ClassDecl) stmtNode()          {}
func (d *ClassDecl) Pos() errs.Position { return d.Position }
func (d *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("class " + d.Name)
	if d.Base != nil {
		sb.WriteString(" extends " + d.Base.Name)
	}
	sb.WriteString(" {\n")
	for _, f := range d.Fields {
		sb.WriteString("  " + f.String() + "\n")
	}
	for _, m := range d.Methods {
		sb.WriteString("  " + m.String() + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}
