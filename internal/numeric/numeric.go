// Package numeric implements the abstract numeric-operation machinery
// BINARY_OP, UNARY_NEGATIVE/UNARY_INVERT, COMPARE_OP and CONTAINS_OP reduce
// to (spec.md section 4.3): slot lookup, subclass-priority ordering, and
// the NotImplemented-means-"try the other side" fallback protocol.
package numeric

import (
	"pyvm/internal/bytecode"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// reverseCompare maps CompareOp to the op that expresses the same
// relation with operands swapped, used when the left operand doesn't
// define Compare[op] but the right one defines the mirror image of it.
var reverseCompare = map[bytecode.CompareOp]bytecode.CompareOp{
	bytecode.CMP_LT: bytecode.CMP_GT,
	bytecode.CMP_LE: bytecode.CMP_GE,
	bytecode.CMP_EQ: bytecode.CMP_EQ,
	bytecode.CMP_NE: bytecode.CMP_NE,
	bytecode.CMP_GT: bytecode.CMP_LT,
	bytecode.CMP_GE: bytecode.CMP_LE,
}

// BinaryOp implements BINARY_OP's abstract dispatch (spec.md section 4.3):
// when the right operand's type is a proper subclass of the left
// operand's and overrides the reflected slot, it is tried first; otherwise
// the left operand's forward slot is tried, then the right operand's
// reflected slot, and TypeError is raised only once both decline via
// NotImplemented.
func BinaryOp(op bytecode.NumericOp, left, right object.Object) (object.Object, *pyerr.PyError) {
	if op.IsInPlace() {
		if r, err := inplaceAttempt(op, left, right); r != nil || err != nil {
			return r, err
		}
		return BinaryOp(op.NonInPlace(), left, right)
	}

	lt, rt := left.Type(), right.Type()
	rightFirst := rt != lt && rt.IsSubclass(lt) && rt.Slots.RBinary[op] != nil

	if rightFirst {
		if res, err := tryReflected(op, left, right); res != nil || err != nil {
			return res, err
		}
		if res, err := tryForward(op, left, right); res != nil || err != nil {
			return res, err
		}
	} else {
		if res, err := tryForward(op, left, right); res != nil || err != nil {
			return res, err
		}
		if rt != lt {
			if res, err := tryReflected(op, left, right); res != nil || err != nil {
				return res, err
			}
		}
	}
	return nil, unsupportedOperand(op.String(), lt.Name, rt.Name)
}

func inplaceAttempt(op bytecode.NumericOp, left, right object.Object) (object.Object, *pyerr.PyError) {
	slot := left.Type().Slots.InplaceBinary[op]
	if slot == nil {
		return nil, nil
	}
	res, err := slot(left, right)
	if err != nil {
		return nil, err
	}
	if res == object.NotImplementedObj {
		return nil, nil
	}
	return res, nil
}

func tryForward(op bytecode.NumericOp, left, right object.Object) (object.Object, *pyerr.PyError) {
	slot := left.Type().Slots.Binary[op]
	if slot == nil {
		return nil, nil
	}
	res, err := slot(left, right)
	if err != nil {
		return nil, err
	}
	if res == object.NotImplementedObj {
		return nil, nil
	}
	return res, nil
}

func tryReflected(op bytecode.NumericOp, left, right object.Object) (object.Object, *pyerr.PyError) {
	slot := right.Type().Slots.RBinary[op]
	if slot == nil {
		return nil, nil
	}
	res, err := slot(right, left)
	if err != nil {
		return nil, err
	}
	if res == object.NotImplementedObj {
		return nil, nil
	}
	return res, nil
}

func unsupportedOperand(sym, lname, rname string) *pyerr.PyError {
	return pyerr.New(pyerr.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", sym, lname, rname)
}

// Unary implements UNARY_NEGATIVE/UNARY_INVERT.
func Unary(slot object.UnarySlot, v object.Object) (object.Object, *pyerr.PyError) {
	if slot == nil {
		return nil, pyerr.New(pyerr.TypeError, "bad operand type for unary operator: '%s'", v.Type().Name)
	}
	return slot(v)
}

// Compare implements COMPARE_OP's six-way dispatch, trying the reflected
// relation on the right operand when the left doesn't define the slot
// (spec.md section 4.3, same NotImplemented fallback as BinaryOp).
func Compare(op bytecode.CompareOp, left, right object.Object) (object.Object, *pyerr.PyError) {
	if slot := left.Type().Slots.Compare[op]; slot != nil {
		res, err := slot(left, right)
		if err != nil {
			return nil, err
		}
		if res != object.NotImplementedObj {
			return res, nil
		}
	}
	if rop, ok := reverseCompare[op]; ok {
		if slot := right.Type().Slots.Compare[rop]; slot != nil {
			res, err := slot(right, left)
			if err != nil {
				return nil, err
			}
			if res != object.NotImplementedObj {
				return res, nil
			}
		}
	}
	if op == bytecode.CMP_EQ {
		return object.Bool(left == right), nil
	}
	if op == bytecode.CMP_NE {
		return object.Bool(left != right), nil
	}
	return nil, unsupportedOperand(op.String(), left.Type().Name, right.Type().Name)
}

// Contains implements CONTAINS_OP: `item in container`.
func Contains(container, item object.Object) (bool, *pyerr.PyError) {
	slot := container.Type().Slots.Contains
	if slot == nil {
		return false, pyerr.New(pyerr.TypeError, "argument of type '%s' is not iterable", container.Type().Name)
	}
	return slot(container, item)
}
