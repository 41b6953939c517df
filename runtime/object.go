package runtime

import (
	"github.com/google/uuid"

	"github.com/bloch-labs/bloch-go/symtab"
)

// RuntimeClass is the heap-allocation-time mirror of a symtab.ClassInfo.
// It is materialized lazily once per class name and cached in the
// evaluator's classes map; generic classes are not instantiated per
// type-argument tuple.
type RuntimeClass struct {
	Name             string
	Info             *symtab.ClassInfo
	TypeArgs         []*symtab.TypeInfo
	FieldOrder       []string
	HasTrackedFields bool
}

// Object is a heap-allocated class instance. ID stamps a stable identity
// independent of its field contents, used by the GC's reachability walk
// and by reference-equality comparisons (spec §3.3, §5.2).
type Object struct {
	ID       uuid.UUID
	Class    *RuntimeClass
	Fields   map[string]Value
	marked   bool
	freed    bool
	skipDtor bool
}

func newObject(class *RuntimeClass) *Object {
	return &Object{
		ID:     uuid.New(),
		Class:  class,
		Fields: make(map[string]Value),
	}
}
