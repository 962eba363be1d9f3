package object

import "pyvm/internal/pyerr"

// DescriptorKind classifies a type-attribute entry, the tagged variant
// spec.md section 9 asks for "not as subclass hierarchies".
type DescriptorKind int

const (
	PlainAttr DescriptorKind = iota
	DataDescriptor
	NonDataDescriptor
	MethodDescriptorKind
)

// AttrEntry is one entry of a Type's attribute dict (spec.md section 4.2).
// For PlainAttr, Value is the attribute itself. For descriptor kinds,
// Value is the descriptor object and Get/Set/Delete implement its
// protocol.
type AttrEntry struct {
	Kind   DescriptorKind
	Value  Object
	Get    func(descr, instance Object, owner *Type) (Object, *pyerr.PyError)
	Set    func(descr, instance, value Object) *pyerr.PyError
	Delete func(descr, instance Object) *pyerr.PyError
}

// NewMethodDescriptor wraps fn (a PyFunction or PyBuiltinFunction) as a
// non-data, method descriptor: its Get binds to produce a PyBoundMethod,
// and LoadMethod (below) is recognized as able to bypass that allocation.
func NewMethodDescriptor(fn Object) *AttrEntry {
	return &AttrEntry{
		Kind:  MethodDescriptorKind,
		Value: fn,
		Get: func(descr, instance Object, _ *Type) (Object, *pyerr.PyError) {
			if instance == nil {
				return descr, nil
			}
			return NewBoundMethod(descr, instance), nil
		},
	}
}

// NewPlainAttr wraps a plain class-dict value (e.g. a class constant).
func NewPlainAttr(v Object) *AttrEntry {
	return &AttrEntry{Kind: PlainAttr, Value: v}
}

// NewGetSetDescriptor builds a data descriptor from Go get/set/delete
// closures, the host equivalent of CPython's getset_descriptor used for
// member slots like an exception's args.
func NewGetSetDescriptor(get func(instance Object) (Object, *pyerr.PyError),
	set func(instance, value Object) *pyerr.PyError,
	del func(instance Object) *pyerr.PyError) *AttrEntry {
	e := &AttrEntry{Kind: NonDataDescriptor}
	if set != nil || del != nil {
		e.Kind = DataDescriptor
	}
	e.Get = func(_ Object, instance Object, _ *Type) (Object, *pyerr.PyError) { return get(instance) }
	if set != nil {
		e.Set = func(_ Object, instance, value Object) *pyerr.PyError { return set(instance, value) }
	}
	if del != nil {
		e.Delete = func(_ Object, instance Object) *pyerr.PyError { return del(instance) }
	}
	return e
}

// GetAttr implements generic getattr(obj, name) (spec.md section 4.5):
//  1. look name up in type(obj)'s MRO
//  2. a data descriptor wins outright
//  3. otherwise obj's own instance dict wins
//  4. otherwise a non-data descriptor (including method descriptors) binds
//  5. otherwise a plain type attribute is returned as-is
//  6. otherwise AttributeError
//
// Types that set Slots.GetAttribute (an overridden __getattribute__) skip
// this algorithm entirely and defer to their own slot.
func GetAttr(obj Object, name string) (Object, *pyerr.PyError) {
	t := obj.Type()
	if t.HasCustomGetAttr {
		return t.Slots.GetAttribute(obj, name)
	}
	return genericGetAttr(obj, name)
}

func genericGetAttr(obj Object, name string) (Object, *pyerr.PyError) {
	t := obj.Type()
	entry, owner := t.lookupAttr(name)
	if entry != nil && entry.Kind == DataDescriptor {
		return entry.Get(entry.Value, obj, owner)
	}
	if inst, ok := obj.(Instance); ok {
		if v, found := inst.InstanceDict()[name]; found {
			return v, nil
		}
	}
	if entry != nil {
		switch entry.Kind {
		case NonDataDescriptor, MethodDescriptorKind:
			return entry.Get(entry.Value, obj, owner)
		case PlainAttr:
			return entry.Value, nil
		}
	}
	return nil, pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
}

// SetAttr implements setattr(obj, name, value): a data descriptor's Set
// wins; otherwise the instance dict is written directly (shadowing any
// non-data descriptor of the same name, per CPython semantics).
func SetAttr(obj Object, name string, value Object) *pyerr.PyError {
	t := obj.Type()
	entry, _ := t.lookupAttr(name)
	if entry != nil && entry.Kind == DataDescriptor {
		if entry.Set == nil {
			return pyerr.New(pyerr.AttributeError, "attribute '%s' of '%s' objects is not writable", name, t.Name)
		}
		return entry.Set(entry.Value, obj, value)
	}
	if inst, ok := obj.(Instance); ok {
		inst.InstanceDict()[name] = value
		return nil
	}
	return pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
}

// DelAttr implements delattr(obj, name), mirroring SetAttr's precedence.
func DelAttr(obj Object, name string) *pyerr.PyError {
	t := obj.Type()
	entry, _ := t.lookupAttr(name)
	if entry != nil && entry.Kind == DataDescriptor {
		if entry.Delete == nil {
			return pyerr.New(pyerr.AttributeError, "attribute '%s' of '%s' objects is not deletable", name, t.Name)
		}
		return entry.Delete(entry.Value, obj)
	}
	if inst, ok := obj.(Instance); ok {
		d := inst.InstanceDict()
		if _, found := d[name]; found {
			delete(d, name)
			return nil
		}
	}
	return pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
}

// LoadMethod implements the LOAD_METHOD fast path (spec.md section 4.5).
// When ok is true, the caller should push (descr, self) — the unbound
// method descriptor and the receiver — letting CALL bind them without
// allocating a PyBoundMethod. When ok is false, value is the ordinary
// getattr result to push behind a null sentinel.
func LoadMethod(obj Object, name string) (descr Object, self Object, value Object, ok bool, err *pyerr.PyError) {
	t := obj.Type()
	if !t.HasCustomGetAttr {
		entry, _ := t.lookupAttr(name)
		if entry != nil && entry.Kind == MethodDescriptorKind {
			shadowed := false
			if inst, isInst := obj.(Instance); isInst {
				_, shadowed = inst.InstanceDict()[name]
			}
			if !shadowed {
				return entry.Value, obj, nil, true, nil
			}
		}
	}
	v, gerr := GetAttr(obj, name)
	if gerr != nil {
		return nil, nil, nil, false, gerr
	}
	return nil, nil, v, false, nil
}
