package object

import "github.com/google/uuid"

// Type is a Python type object (spec.md section 3). Its identity is
// stable for the lifetime of the process; ID gives that identity a
// concrete, comparable value independent of the Go pointer.
type Type struct {
	ID   uuid.UUID
	Name string
	Base *Type // single inheritance is sufficient for this spec's scope

	Slots SlotTable
	Dict  map[string]*AttrEntry

	// HasCustomGetAttr mirrors Slots.GetAttribute != nil; kept as its own
	// field because the LOAD_METHOD fast path (spec.md section 4.5) reads
	// it as a yes/no flag rather than inspecting the slot itself.
	HasCustomGetAttr bool
}

// NewType builds a type, merging slots and attribute dict down from base
// (spec.md 4.1's "MRO-resolved slot table" — flattened at construction
// time rather than walked per lookup).
func NewType(name string, base *Type, slots SlotTable, dict map[string]*AttrEntry) *Type {
	merged := slots
	if base != nil {
		merged = mergeSlots(slots, base.Slots)
	}
	if dict == nil {
		dict = map[string]*AttrEntry{}
	}
	t := &Type{
		ID:               uuid.New(),
		Name:             name,
		Base:             base,
		Slots:            merged,
		Dict:             dict,
		HasCustomGetAttr: merged.GetAttribute != nil,
	}
	return t
}

// Type itself is a Python object: type(SomeClass) is the metatype, and
// every *Type's own Type() is TypeType. This makes *Type implement
// Object, so a class can sit on the value stack like any other value.
func (t *Type) Type() *Type {
	if TypeType == nil {
		return t // TypeType itself, before builtins.go has finished bootstrapping
	}
	return TypeType
}

// MRO returns the method-resolution order from t up to the root type.
func (t *Type) MRO() []*Type {
	var chain []*Type
	for cur := t; cur != nil; cur = cur.Base {
		chain = append(chain, cur)
	}
	return chain
}

// IsSubclass reports whether t is other or a (possibly indirect) subclass
// of it, used by the binary-op subclass-priority algorithm (spec.md 4.3)
// and by isinstance-style checks.
func (t *Type) IsSubclass(other *Type) bool {
	for cur := t; cur != nil; cur = cur.Base {
		if cur == other {
			return true
		}
	}
	return false
}

// lookupAttr walks the MRO looking for name in each type's Dict, returning
// the owning type along with the entry (spec.md section 4.5 step 1).
func (t *Type) lookupAttr(name string) (*AttrEntry, *Type) {
	for _, cur := range t.MRO() {
		if entry, ok := cur.Dict[name]; ok {
			return entry, cur
		}
	}
	return nil, nil
}
