package symtab

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
)

// FieldInfo is the semantic-registry record of a single class field
// (spec §3.2). Offset is its slot index within its own class's
// declaration order; the runtime mirror (RuntimeClass) lays out the
// final inherited-then-own offsets.
type FieldInfo struct {
	Name             string
	Visibility       ast.Visibility
	Static           bool
	Final            bool
	Tracked          bool
	HasInitializer   bool
	Type             *TypeInfo
	Owner            string // owning class name
	OffsetWithinOwner int
	Pos              errs.Position
}

// MethodInfo is the semantic-registry record of a single method overload.
type MethodInfo struct {
	Name       string
	Visibility ast.Visibility
	Static     bool
	Virtual    bool
	Override   bool
	HasBody    bool
	Owner      string
	ReturnType *TypeInfo
	ParamTypes []*TypeInfo
	Signature  string
	Decl       *ast.MethodDecl
	Pos        errs.Position
}

// ConstructorInfo is a registered constructor overload.
type ConstructorInfo struct {
	ParamTypes []*TypeInfo
	Visibility ast.Visibility
	Decl       *ast.ConstructorDecl
}

// ClassInfo is the full semantic registry record for one class (spec §3.2).
type ClassInfo struct {
	Name            string
	Base            string // "" only for Object itself
	IsStatic        bool
	IsAbstract      bool
	TypeParams      []ast.TypeParam
	Fields          map[string]*FieldInfo
	FieldOrder      []string // declaration order, own fields only
	Methods         map[string][]*MethodInfo
	Constructors    []*ConstructorInfo
	Destructor      *ast.DestructorDecl
	MethodSignatures map[string]bool
	AbstractMethods []string // unresolved virtual-without-body signatures
	Decl            *ast.ClassDecl
}

func NewClassInfo(name string) *ClassInfo {
	return &ClassInfo{
		Name:             name,
		Fields:           make(map[string]*FieldInfo),
		Methods:          make(map[string][]*MethodInfo),
		MethodSignatures: make(map[string]bool),
	}
}

// ClassRegistry is the Phase-A output: every class keyed by name, plus the
// implicit Object root.
type ClassRegistry struct {
	Classes map[string]*ClassInfo
}

func NewClassRegistry() *ClassRegistry {
	r := &ClassRegistry{Classes: make(map[string]*ClassInfo)}
	obj := NewClassInfo("Object")
	r.Classes["Object"] = obj
	return r
}

func (r *ClassRegistry) Get(name string) (*ClassInfo, bool) {
	c, ok := r.Classes[name]
	return c, ok
}

// IsSubclassOf reports whether child is class name or a (transitive)
// subclass of ancestor, per the Base chain.
func (r *ClassRegistry) IsSubclassOf(child, ancestor string) bool {
	cur := child
	for {
		if cur == ancestor {
			return true
		}
		ci, ok := r.Classes[cur]
		if !ok || ci.Base == "" {
			return false
		}
		cur = ci.Base
	}
}

// DistanceInInheritance returns the number of Base hops from child to
// ancestor, or -1 if ancestor is not a (transitive) base of child. Used
// by conversion_cost for subclass-to-base overload scoring (spec §4.2.3).
func (r *ClassRegistry) DistanceInInheritance(child, ancestor string) int {
	cur := child
	dist := 0
	for {
		if cur == ancestor {
			return dist
		}
		ci, ok := r.Classes[cur]
		if !ok || ci.Base == "" {
			return -1
		}
		cur = ci.Base
		dist++
	}
}

// LookupField walks the base chain starting at className looking for a
// field by name, returning the owning ClassInfo's FieldInfo.
func (r *ClassRegistry) LookupField(className, fieldName string) (*FieldInfo, bool) {
	cur := className
	for cur != "" {
		ci, ok := r.Classes[cur]
		if !ok {
			return nil, false
		}
		if f, ok := ci.Fields[fieldName]; ok {
			return f, true
		}
		cur = ci.Base
	}
	return nil, false
}

// LookupMethods walks the base chain collecting method overloads by name,
// most-derived first (so the caller can prefer a derived match).
func (r *ClassRegistry) LookupMethods(className, methodName string) []*MethodInfo {
	var out []*MethodInfo
	cur := className
	for cur != "" {
		ci, ok := r.Classes[cur]
		if !ok {
			break
		}
		out = append(out, ci.Methods[methodName]...)
		cur = ci.Base
	}
	return out
}

// HasTrackedFields reports whether className or any of its ancestors
// declares a qubit/qubit[]-typed or @tracked instance field (spec §3.3's
// RuntimeClass.has_tracked_fields). Objects of such a class are exempt
// from cycle-collector sweep (spec §4.3.7) so their tracked data survives
// to destruction time.
func (r *ClassRegistry) HasTrackedFields(className string) bool {
	cur := className
	for cur != "" {
		ci, ok := r.Classes[cur]
		if !ok {
			return false
		}
		for _, fname := range ci.FieldOrder {
			fi := ci.Fields[fname]
			if fi.Static {
				continue
			}
			if fi.Tracked {
				return true
			}
			t := fi.Type
			if t.IsPrimitive && t.Primitive == ast.QubitKind {
				return true
			}
			if t.IsArray && t.ElementType != nil && t.ElementType.IsPrimitive && t.ElementType.Primitive == ast.QubitKind {
				return true
			}
		}
		cur = ci.Base
	}
	return false
}

// InstanceFieldOrder returns field names in base-then-derived declaration
// order, the layout RuntimeClass mirrors (spec §3.3).
func (r *ClassRegistry) InstanceFieldOrder(className string) []string {
	var chain []string
	cur := className
	for cur != "" {
		ci, ok := r.Classes[cur]
		if !ok {
			break
		}
		chain = append([]string{cur}, chain...)
		cur = ci.Base
	}
	var order []string
	for _, cname := range chain {
		ci := r.Classes[cname]
		for _, fname := range ci.FieldOrder {
			if !ci.Fields[fname].Static {
				order = append(order, fname)
			}
		}
	}
	return order
}
