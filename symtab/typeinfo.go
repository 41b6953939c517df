// Package symtab holds Bloch's semantic registry entities (spec §3.2):
// ClassInfo, FieldInfo, MethodInfo, TypeInfo, plus the lexical scope stack
// used during the semantic analyser's program-check pass. Grounded on the
// teacher's internal/types + internal/semantic/symbol_table.go split
// between a compile-time type system and a scope-stack symbol table.
package symtab

import (
	"strings"

	"github.com/bloch-labs/bloch-go/ast"
)

// TypeInfo is the semantic analyser's resolved-type representation,
// distinct from the syntactic ast.Type it is resolved from.
type TypeInfo struct {
	Primitive   ast.Primitive
	IsPrimitive bool
	IsVoid      bool
	ClassName   string // empty unless this names a class
	IsArray     bool
	ElementType *TypeInfo // set iff IsArray
	TypeArgs    []*TypeInfo
	IsTypeParam bool
	IsNull      bool // the type of the `null` literal
}

// Primitive type-info singletons.
func Int() *TypeInfo     { return &TypeInfo{Primitive: ast.IntKind, IsPrimitive: true} }
func Long() *TypeInfo    { return &TypeInfo{Primitive: ast.LongKind, IsPrimitive: true} }
func Float() *TypeInfo   { return &TypeInfo{Primitive: ast.FloatKind, IsPrimitive: true} }
func Bit() *TypeInfo     { return &TypeInfo{Primitive: ast.BitKind, IsPrimitive: true} }
func Boolean() *TypeInfo { return &TypeInfo{Primitive: ast.BooleanKind, IsPrimitive: true} }
func Str() *TypeInfo     { return &TypeInfo{Primitive: ast.StringKind, IsPrimitive: true} }
func Char() *TypeInfo    { return &TypeInfo{Primitive: ast.CharKind, IsPrimitive: true} }
func Qubit() *TypeInfo   { return &TypeInfo{Primitive: ast.QubitKind, IsPrimitive: true} }
func Void() *TypeInfo    { return &TypeInfo{IsVoid: true} }
func Null() *TypeInfo    { return &TypeInfo{IsNull: true} }

func Class(name string, args ...*TypeInfo) *TypeInfo {
	return &TypeInfo{ClassName: name, TypeArgs: args}
}

func Array(elem *TypeInfo) *TypeInfo {
	return &TypeInfo{IsArray: true, ElementType: elem}
}

func TypeParam(name string) *TypeInfo {
	return &TypeInfo{ClassName: name, IsTypeParam: true}
}

// IsNumeric reports whether t is int, long, float, or bit (bit promotes
// to int for arithmetic, per spec §4.2.4).
func (t *TypeInfo) IsNumeric() bool {
	if !t.IsPrimitive {
		return false
	}
	switch t.Primitive {
	case ast.IntKind, ast.LongKind, ast.FloatKind, ast.BitKind:
		return true
	default:
		return false
	}
}

// IsBooleanLike reports whether t is boolean or bit.
func (t *TypeInfo) IsBooleanLike() bool {
	return t.IsPrimitive && (t.Primitive == ast.BooleanKind || t.Primitive == ast.BitKind)
}

// IsClassRef reports whether t denotes a (non-array) class type.
func (t *TypeInfo) IsClassRef() bool {
	return !t.IsPrimitive && !t.IsVoid && !t.IsArray && !t.IsNull && t.ClassName != ""
}

func (t *TypeInfo) String() string {
	switch {
	case t == nil:
		return "<nil>"
	case t.IsVoid:
		return "void"
	case t.IsNull:
		return "null"
	case t.IsArray:
		return t.ElementType.String() + "[]"
	case t.IsPrimitive:
		return t.Primitive.String()
	default:
		if len(t.TypeArgs) == 0 {
			return t.ClassName
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return t.ClassName + "<" + strings.Join(parts, ", ") + ">"
	}
}

// Equal reports exact type equality (used for array element comparison
// and signature matching), including identical class name and identical
// type-argument lists (spec §4.2.3).
func Equal(a, b *TypeInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch {
	case a.IsVoid || b.IsVoid:
		return a.IsVoid && b.IsVoid
	case a.IsArray || b.IsArray:
		return a.IsArray && b.IsArray && Equal(a.ElementType, b.ElementType)
	case a.IsPrimitive || b.IsPrimitive:
		return a.IsPrimitive && b.IsPrimitive && a.Primitive == b.Primitive
	default:
		if a.ClassName != b.ClassName || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	}
}
