// Package semantic implements Bloch's two-phase semantic analysis (spec
// §4.2): Phase A builds a ClassRegistry from every class declaration;
// Phase B walks the program checking types, scoping, and annotation
// rules against that registry. Grounded on the teacher's
// internal/semantic package's analyzer/symbol_table split.
package semantic

import (
	"fmt"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

// buildRegistry runs Phase A: register every class, link base classes,
// compute inherited field/method layout, and validate override/abstract
// rules. It does not type-check method bodies — that is Phase B.
func buildRegistry(prog *ast.Program) (*symtab.ClassRegistry, *errs.BlochError) {
	reg := symtab.NewClassRegistry()

	for _, cd := range prog.Classes {
		if _, exists := reg.Classes[cd.Name]; exists {
			errs.Panic(errs.Semantic, cd.Position, "class '%s' is already declared", cd.Name)
		}
		ci := symtab.NewClassInfo(cd.Name)
		ci.IsStatic = cd.Static
		ci.IsAbstract = cd.Abstract
		ci.TypeParams = cd.TypeParams
		ci.Decl = cd
		if cd.Base != nil {
			ci.Base = cd.Base.Name
		} else {
			ci.Base = "Object"
		}
		reg.Classes[cd.Name] = ci
	}

	for _, cd := range prog.Classes {
		ci := reg.Classes[cd.Name]
		if ci.Base != "Object" {
			if _, ok := reg.Classes[ci.Base]; !ok {
				errs.Panic(errs.Semantic, cd.Position, "class '%s' extends unknown class '%s'", cd.Name, ci.Base)
			}
		}
	}

	for _, cd := range prog.Classes {
		checkInheritanceCycle(reg, cd.Name, cd.Position)
	}

	for _, cd := range prog.Classes {
		ci := reg.Classes[cd.Name]
		populateFields(ci, cd)
		populateMethods(reg, ci, cd)
		populateConstructors(ci, cd)
		ci.Destructor = cd.Destructor
	}

	for _, cd := range prog.Classes {
		checkOverrides(reg, reg.Classes[cd.Name])
	}

	for _, cd := range prog.Classes {
		computeAbstractMethods(reg, reg.Classes[cd.Name])
	}

	return reg, nil
}

func checkInheritanceCycle(reg *symtab.ClassRegistry, start string, pos errs.Position) {
	seen := map[string]bool{start: true}
	cur := start
	for {
		ci, ok := reg.Classes[cur]
		if !ok || ci.Base == "" || ci.Base == "Object" {
			return
		}
		if seen[ci.Base] {
			errs.Panic(errs.Semantic, pos, "inheritance cycle detected involving class '%s'", start)
		}
		seen[ci.Base] = true
		cur = ci.Base
	}
}

func populateFields(ci *symtab.ClassInfo, cd *ast.ClassDecl) {
	offset := 0
	for _, f := range cd.Fields {
		if _, dup := ci.Fields[f.Name]; dup {
			errs.Panic(errs.Semantic, f.Position, "field '%s' is already declared in class '%s'", f.Name, ci.Name)
		}
		fi := &symtab.FieldInfo{
			Name:              f.Name,
			Visibility:        f.Visibility,
			Static:            f.Static,
			Final:             f.Final,
			Tracked:           f.Tracked,
			HasInitializer:    f.Initializer != nil,
			Type:              resolveType(f.Type),
			Owner:             ci.Name,
			OffsetWithinOwner: offset,
			Pos:               f.Position,
		}
		ci.Fields[f.Name] = fi
		ci.FieldOrder = append(ci.FieldOrder, f.Name)
		if !f.Static {
			offset++
		}
	}
}

func populateMethods(reg *symtab.ClassRegistry, ci *symtab.ClassInfo, cd *ast.ClassDecl) {
	for _, m := range cd.Methods {
		sig := m.Signature()
		if ci.MethodSignatures[sig] {
			errs.Panic(errs.Semantic, m.Position, "method '%s' is already declared in class '%s'", sig, ci.Name)
		}
		ci.MethodSignatures[sig] = true
		paramTypes := make([]*symtab.TypeInfo, len(m.Params))
		for i, p := range m.Params {
			paramTypes[i] = resolveType(p.Type)
		}
		mi := &symtab.MethodInfo{
			Name:       m.Name,
			Visibility: m.Visibility,
			Static:     m.Static,
			Virtual:    m.Virtual,
			Override:   m.Override,
			HasBody:    m.Body != nil,
			Owner:      ci.Name,
			ReturnType: resolveType(m.ReturnType),
			ParamTypes: paramTypes,
			Signature:  sig,
			Decl:       m,
			Pos:        m.Position,
		}
		ci.Methods[m.Name] = append(ci.Methods[m.Name], mi)
	}
}

func populateConstructors(ci *symtab.ClassInfo, cd *ast.ClassDecl) {
	for _, c := range cd.Constructors {
		paramTypes := make([]*symtab.TypeInfo, len(c.Params))
		for i, p := range c.Params {
			paramTypes[i] = resolveType(p.Type)
		}
		ci.Constructors = append(ci.Constructors, &symtab.ConstructorInfo{
			ParamTypes: paramTypes,
			Visibility: c.Visibility,
			Decl:       c,
		})
	}
}

// checkOverrides enforces spec §4.2.5: a method marked override must
// match a virtual base method of the same signature; a method not
// marked override must not collide with a base virtual method's name
// unless its signature differs (true overload), and `final` base
// methods cannot be further overridden (final here means not virtual).
func checkOverrides(reg *symtab.ClassRegistry, ci *symtab.ClassInfo) {
	if ci.Base == "" {
		return
	}
	for name, overloads := range ci.Methods {
		for _, mi := range overloads {
			baseOverloads := reg.LookupMethods(ci.Base, name)
			var match *symtab.MethodInfo
			for _, b := range baseOverloads {
				if b.Signature == mi.Signature {
					match = b
					break
				}
			}
			if mi.Override {
				if match == nil {
					errs.Panic(errs.Semantic, mi.Pos, "method '%s' marked 'override' does not override any base method", mi.Signature)
				}
				if !match.Virtual {
					errs.Panic(errs.Semantic, mi.Pos, "method '%s' overrides a non-virtual base method", mi.Signature)
				}
				if !symtab.Equal(match.ReturnType, mi.ReturnType) {
					errs.Panic(errs.Semantic, mi.Pos, "overriding method '%s' must return the same type as the base method", mi.Signature)
				}
			} else if match != nil && match.Virtual {
				errs.Panic(errs.Semantic, mi.Pos, "method '%s' hides a virtual base method; use 'override'", mi.Signature)
			}
		}
	}
}

// computeAbstractMethods collects signatures of virtual methods without a
// body, inherited or own, that remain unimplemented; a class with any
// such signature must itself be declared abstract (spec §4.2.5).
func computeAbstractMethods(reg *symtab.ClassRegistry, ci *symtab.ClassInfo) {
	pending := map[string]*symtab.MethodInfo{}
	var chain []string
	cur := ci.Name
	for cur != "" {
		chain = append([]string{cur}, chain...)
		c, ok := reg.Classes[cur]
		if !ok {
			break
		}
		cur = c.Base
	}
	for _, cname := range chain {
		c := reg.Classes[cname]
		for _, overloads := range c.Methods {
			for _, mi := range overloads {
				if mi.Virtual && !mi.HasBody {
					pending[mi.Signature] = mi
				} else if mi.HasBody || mi.Override {
					delete(pending, mi.Signature)
				}
			}
		}
	}
	for sig := range pending {
		ci.AbstractMethods = append(ci.AbstractMethods, sig)
	}
	if len(ci.AbstractMethods) > 0 && !ci.IsAbstract {
		errs.Panic(errs.Semantic, ci.Decl.Position, "class '%s' has unimplemented virtual methods and must be declared 'abstract'", ci.Name)
	}
}

// resolveType converts a syntactic ast.Type into a symtab.TypeInfo. It
// does not evaluate array-size expressions — that happens during Phase B
// via evaluateConstInt, with the resolved size back-patched onto the AST
// node so later reads of the same type see a literal size.
func resolveType(t ast.Type) *symtab.TypeInfo {
	switch tt := t.(type) {
	case *ast.PrimitiveType:
		switch tt.Kind {
		case ast.IntKind:
			return symtab.Int()
		case ast.LongKind:
			return symtab.Long()
		case ast.FloatKind:
			return symtab.Float()
		case ast.BitKind:
			return symtab.Bit()
		case ast.BooleanKind:
			return symtab.Boolean()
		case ast.StringKind:
			return symtab.Str()
		case ast.CharKind:
			return symtab.Char()
		case ast.QubitKind:
			return symtab.Qubit()
		default:
			return symtab.Void()
		}
	case *ast.VoidType:
		return symtab.Void()
	case *ast.NamedType:
		args := make([]*symtab.TypeInfo, len(tt.TypeArguments))
		for i, a := range tt.TypeArguments {
			args[i] = resolveType(a)
		}
		return &symtab.TypeInfo{ClassName: tt.Name(), TypeArgs: args}
	case *ast.ArrayType:
		return symtab.Array(resolveType(tt.ElementType))
	default:
		panic(fmt.Sprintf("semantic: unhandled ast.Type %T", t))
	}
}
