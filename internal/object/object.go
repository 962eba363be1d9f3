// Package object implements the uniform value and type model that every
// opcode operates on (spec.md section 3, component 4.1).
package object

// Object is the uniform Python value: every concrete representation
// (PyInt, PyBigInt, PyBool, PyFloat, PyStr, PyTuple, PyList, PyDict,
// pyNone, pyNotImplemented, PyFunction, PyCodeObj, cell.Cell, *Type,
// PyBoundMethod, PyInstance, ...) implements it by
// returning its (single, process-lifetime) Python Type.
//
// spec.md's "Host-language substitution" note (section 9) calls for a
// tagged variant in place of CPython's single PyObject*; Object plus a
// type switch at the handful of sites that need to distinguish
// representations (numeric promotion, attribute access) is that variant.
type Object interface {
	Type() *Type
}

// pyNone is the representation of the None singleton.
type pyNone struct{}

func (pyNone) Type() *Type { return NoneType }

// None is the process-wide None singleton; compared by identity (spec.md
// section 3 invariant).
var None Object = pyNone{}

type pyNotImplemented struct{}

func (pyNotImplemented) Type() *Type { return NotImplementedType }

// NotImplementedObj is the process-wide NotImplemented singleton used by
// the numeric-abstraction fallback algorithm (spec.md section 4.3).
var NotImplementedObj Object = pyNotImplemented{}

// PyBool is the type of True/False. Like CPython, there are exactly two
// instances, both process-wide singletons.
type PyBool struct{ Val bool }

func (PyBool) Type() *Type { return BoolType }

var (
	True  Object = PyBool{true}
	False Object = PyBool{false}
)

// Bool returns the canonical True/False singleton for v.
func Bool(v bool) Object {
	if v {
		return True
	}
	return False
}

// Truthy implements the generic boolean-conversion protocol: consult
// __bool__ if present, else __len__ != 0, else True. Used by every opcode
// that branches on a value (POP_JUMP_*, JUMP_IF_*_OR_POP, and-or chains).
func Truthy(obj Object) (bool, error) {
	slots := obj.Type().Slots
	if slots.Bool != nil {
		v, err := slots.Bool(obj)
		if err != nil {
			return false, err
		}
		return v, nil
	}
	if slots.Len != nil {
		n, err := slots.Len(obj)
		if err != nil {
			return false, err
		}
		return n != 0, nil
	}
	return true, nil
}
